package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// HeatmapService 逐行错误热力图：聚合一次提交的测试结果里
// 标注了出错行号的条目。status/message 覆盖、frequency 累加。
type HeatmapService struct {
	HeatmapRepo *repository.HeatmapRepository
	AttemptRepo *repository.AttemptRepository
}

func NewHeatmapService(heatmapRepo *repository.HeatmapRepository, attemptRepo *repository.AttemptRepository) *HeatmapService {
	return &HeatmapService{
		HeatmapRepo: heatmapRepo,
		AttemptRepo: attemptRepo,
	}
}

// Record 把带 error_line 的测试结果逐条落入热力表
func (s *HeatmapService) Record(attempt *model.Attempt, results []model.TestCaseResult) error {
	for _, r := range results {
		if r.ErrorLine == nil {
			continue
		}

		status := model.HeatmapStatusError
		if r.Passed {
			status = model.HeatmapStatusCorrect
		}

		line := &model.HeatmapLine{
			UserID:      attempt.UserID,
			ChallengeID: attempt.ChallengeID,
			AttemptID:   attempt.ID,
			LineNumber:  *r.ErrorLine,
			Status:      status,
			Message:     r.Message,
		}
		if err := s.HeatmapRepo.Upsert(line); err != nil {
			return err
		}
	}
	return nil
}

// RecordFromAttempt 基于已存储的提交重新生成热力数据
func (s *HeatmapService) RecordFromAttempt(attemptID uint) error {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrAttemptNotFound
		}
		return err
	}
	return s.Record(attempt, attempt.ParsedTestResults())
}

// Data 查询热力数据，按行号分组；challengeID/userID 为 0 时不过滤
func (s *HeatmapService) Data(challengeID, userID uint) (map[int][]model.HeatmapLine, error) {
	lines, err := s.HeatmapRepo.List(challengeID, userID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int][]model.HeatmapLine)
	for _, line := range lines {
		grouped[line.LineNumber] = append(grouped[line.LineNumber], line)
	}
	return grouped, nil
}

package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"time"
)

const (
	// 成功一次，对应能力域加固定增量，封顶100。
	// 这是刻意保留的粗粒度策略：不按挑战难度或分值加权。
	competencyIncrement = 10
	competencyCap       = 100
)

// ProfileService 学习者画像的唯一写入方。
// 画像是 Attempt 日志的物化视图，Apply 负责增量聚合，
// Rebuild 负责从日志全量重算（部分失败后的对账恢复）。
type ProfileService struct {
	ProfileRepo *repository.LearnerProfileRepository
	AttemptRepo *repository.AttemptRepository
}

func NewProfileService(profileRepo *repository.LearnerProfileRepository, attemptRepo *repository.AttemptRepository) *ProfileService {
	return &ProfileService{
		ProfileRepo: profileRepo,
		AttemptRepo: attemptRepo,
	}
}

func (s *ProfileService) GetOrCreate(userID uint) (*model.LearnerProfile, error) {
	return s.ProfileRepo.FindOrCreate(userID)
}

// Apply 把一次新的提交聚合进画像。纯内存计算，不落库——
// 提交流程在同一个事务里持久化 Attempt 和更新后的画像。
func (s *ProfileService) Apply(profile *model.LearnerProfile, attempt *model.Attempt, challenge *model.Challenge, now time.Time) {
	profile.TotalAttempts++
	if attempt.IsSuccessful {
		profile.SuccessfulAttempts++
	}

	scores := profile.ScoresMap()
	if _, ok := scores[challenge.CompetencyID]; !ok {
		scores[challenge.CompetencyID] = 0
	}
	if attempt.IsSuccessful {
		next := scores[challenge.CompetencyID] + competencyIncrement
		if next > competencyCap {
			next = competencyCap
		}
		scores[challenge.CompetencyID] = next
	}
	profile.SetScoresMap(scores)

	profile.OverallPerformance = overallPerformance(profile.SuccessfulAttempts, profile.TotalAttempts)

	// 滚动平均用时
	profile.AverageTimePerChallenge += (float64(attempt.TimeSpent) - profile.AverageTimePerChallenge) / float64(profile.TotalAttempts)
	profile.HintsUsed += attempt.HintsUsed

	if !attempt.IsSuccessful {
		// 失败后继续提交视为坚持
		profile.PersistenceScore = clamp(profile.PersistenceScore+1, 0, 100)
	}

	s.applyStreak(profile, now)
}

// applyStreak 连续活跃天数：同一天不变，隔一天+1，断档或首次活跃归1
func (s *ProfileService) applyStreak(profile *model.LearnerProfile, now time.Time) {
	today := truncateToDay(now)

	if profile.LastActiveDate == nil {
		profile.StreakDays = 1
		profile.EngagementLevel = clamp(profile.EngagementLevel+2, 0, 100)
	} else {
		daysSince := int(today.Sub(truncateToDay(*profile.LastActiveDate)).Hours() / 24)
		switch {
		case daysSince == 0:
			profile.EngagementLevel = clamp(profile.EngagementLevel+2, 0, 100)
		case daysSince == 1:
			profile.StreakDays++
			profile.EngagementLevel = clamp(profile.EngagementLevel+5, 0, 100)
		default:
			profile.StreakDays = 1
			profile.EngagementLevel = clamp(profile.EngagementLevel-float64(daysSince), 0, 100)
		}
	}

	profile.LastActiveDate = &today
}

// Rebuild 从 Attempt 日志重算画像聚合字段并落库。
// total/successful/competency_scores/overall 都是日志的纯函数，
// Attempt 写入与画像更新之间出现崩溃时靠它恢复一致。
func (s *ProfileService) Rebuild(userID uint) (*model.LearnerProfile, error) {
	profile, err := s.ProfileRepo.FindOrCreate(userID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.AttemptRepo.ListAllByUser(userID)
	if err != nil {
		return nil, err
	}

	total := 0
	successful := 0
	totalTime := 0
	hints := 0
	scores := map[uint]float64{}

	for _, a := range attempts {
		total++
		totalTime += a.TimeSpent
		hints += a.HintsUsed
		if a.Challenge != nil {
			if _, ok := scores[a.Challenge.CompetencyID]; !ok {
				scores[a.Challenge.CompetencyID] = 0
			}
		}
		if a.IsSuccessful {
			successful++
			if a.Challenge != nil {
				next := scores[a.Challenge.CompetencyID] + competencyIncrement
				if next > competencyCap {
					next = competencyCap
				}
				scores[a.Challenge.CompetencyID] = next
			}
		}
	}

	profile.TotalAttempts = total
	profile.SuccessfulAttempts = successful
	profile.SetScoresMap(scores)
	profile.OverallPerformance = overallPerformance(successful, total)
	profile.HintsUsed = hints
	if total > 0 {
		profile.AverageTimePerChallenge = float64(totalTime) / float64(total)
	} else {
		profile.AverageTimePerChallenge = 0
	}

	if err := s.ProfileRepo.Save(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func overallPerformance(successful, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

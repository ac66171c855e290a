package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

const challengeCacheGroup = "challenges"

type ChallengeService struct {
	ChallengeRepo  *repository.ChallengeRepository
	CompetencyRepo *repository.CompetencyRepository
	AttemptRepo    *repository.AttemptRepository
	Cache          *CacheService
}

func NewChallengeService(
	challengeRepo *repository.ChallengeRepository,
	competencyRepo *repository.CompetencyRepository,
	attemptRepo *repository.AttemptRepository,
	cache *CacheService,
) *ChallengeService {
	return &ChallengeService{
		ChallengeRepo:  challengeRepo,
		CompetencyRepo: competencyRepo,
		AttemptRepo:    attemptRepo,
		Cache:          cache,
	}
}

// ChallengeRequest 创建/更新挑战的入参，校验范围沿用原有约束
type ChallengeRequest struct {
	Title            string          `json:"title" binding:"required,max=255"`
	Description      string          `json:"description" binding:"required"`
	ProblemStatement string          `json:"problemStatement" binding:"required"`
	CompetencyID     uint            `json:"competencyId" binding:"required"`
	Difficulty       string          `json:"difficulty" binding:"required,oneof=easy medium hard"`
	StarterCode      string          `json:"starterCode"`
	TestCases        json.RawMessage `json:"testCases" binding:"required"`
	Hints            json.RawMessage `json:"hints"`
	MaxAttempts      int             `json:"maxAttempts" binding:"omitempty,min=1,max=50"`
	TimeLimit        int             `json:"timeLimit" binding:"omitempty,min=5,max=180"`
	Points           int             `json:"points" binding:"omitempty,min=10,max=1000"`
	IsActive         *bool           `json:"isActive"`
}

func (s *ChallengeService) Create(req ChallengeRequest) (*model.Challenge, error) {
	if _, err := s.CompetencyRepo.FindByID(req.CompetencyID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCompetencyNotFound
		}
		return nil, err
	}
	if !json.Valid(req.TestCases) {
		return nil, util.ErrInvalidTestCases
	}

	challenge := &model.Challenge{
		Title:            req.Title,
		Description:      req.Description,
		ProblemStatement: req.ProblemStatement,
		CompetencyID:     req.CompetencyID,
		Difficulty:       req.Difficulty,
		StarterCode:      req.StarterCode,
		TestCases:        req.TestCases,
		Hints:            req.Hints,
		MaxAttempts:      req.MaxAttempts,
		TimeLimit:        req.TimeLimit,
		Points:           req.Points,
		IsActive:         true,
	}
	if challenge.MaxAttempts == 0 {
		challenge.MaxAttempts = 10
	}
	if challenge.TimeLimit == 0 {
		challenge.TimeLimit = 30
	}
	if challenge.Points == 0 {
		challenge.Points = 100
	}
	if req.IsActive != nil {
		challenge.IsActive = *req.IsActive
	}

	if err := s.ChallengeRepo.Create(challenge); err != nil {
		return nil, err
	}
	s.Cache.ForgetGroup(context.Background(), challengeCacheGroup)
	return challenge, nil
}

func (s *ChallengeService) Update(id uint, req ChallengeRequest) (*model.Challenge, error) {
	challenge, err := s.ChallengeRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	if _, err := s.CompetencyRepo.FindByID(req.CompetencyID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCompetencyNotFound
		}
		return nil, err
	}

	if !json.Valid(req.TestCases) {
		return nil, util.ErrInvalidTestCases
	}

	challenge.Title = req.Title
	challenge.Description = req.Description
	challenge.ProblemStatement = req.ProblemStatement
	challenge.CompetencyID = req.CompetencyID
	challenge.Difficulty = req.Difficulty
	challenge.StarterCode = req.StarterCode
	challenge.TestCases = req.TestCases
	challenge.Hints = req.Hints
	if req.MaxAttempts > 0 {
		challenge.MaxAttempts = req.MaxAttempts
	}
	if req.TimeLimit > 0 {
		challenge.TimeLimit = req.TimeLimit
	}
	if req.Points > 0 {
		challenge.Points = req.Points
	}
	if req.IsActive != nil {
		challenge.IsActive = *req.IsActive
	}

	if err := s.ChallengeRepo.Update(challenge); err != nil {
		return nil, err
	}
	s.Cache.ForgetGroup(context.Background(), challengeCacheGroup)
	return challenge, nil
}

// List 教师视角的全量挑战列表，包含未激活的
func (s *ChallengeService) List(page, limit int) ([]model.Challenge, int64, error) {
	return s.ChallengeRepo.List(page, limit)
}

func (s *ChallengeService) Get(id uint) (*model.Challenge, error) {
	challenge, err := s.ChallengeRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	return challenge, nil
}

// Delete 软删除挑战，历史尝试记录保留
func (s *ChallengeService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.ChallengeRepo.Delete(id); err != nil {
		return err
	}
	s.Cache.ForgetGroup(context.Background(), challengeCacheGroup)
	return nil
}

// StudentChallenge 学生视角的挑战条目：附带个人进度
type StudentChallenge struct {
	Challenge     model.Challenge `json:"challenge"`
	BestScore     int             `json:"bestScore"`
	AttemptsCount int             `json:"attemptsCount"`
	AttemptsLeft  int             `json:"attemptsLeft"`
	Completed     bool            `json:"completed"`
}

// ListForStudent 学生可见的激活挑战 + 每项的个人进度。
// 挑战列表走缓存（挑战变更时整组失效），个人进度实时查询。
func (s *ChallengeService) ListForStudent(ctx context.Context, userID uint, page, limit int) ([]StudentChallenge, int64, error) {
	type pageData struct {
		Items []model.Challenge `json:"items"`
		Total int64             `json:"total"`
	}

	var cached pageData
	err := s.Cache.Remember(ctx, challengeCacheGroup, PageIdentifier(page, limit), 10*time.Minute, &cached, func() (interface{}, error) {
		items, total, err := s.ChallengeRepo.ListActive(page, limit)
		if err != nil {
			return nil, err
		}
		return pageData{Items: items, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	stats, err := s.AttemptRepo.StatsByUser(userID)
	if err != nil {
		return nil, 0, err
	}

	result := make([]StudentChallenge, 0, len(cached.Items))
	for _, challenge := range cached.Items {
		stat := stats[challenge.ID]
		left := challenge.MaxAttempts - stat.Attempts
		if left < 0 {
			left = 0
		}
		// 测试用例是评测依据，列表和详情一样不下发给学生端
		challenge.TestCases = nil
		result = append(result, StudentChallenge{
			Challenge:     challenge,
			BestScore:     stat.BestScore,
			AttemptsCount: stat.Attempts,
			AttemptsLeft:  left,
			Completed:     stat.Successes > 0,
		})
	}
	return result, cached.Total, nil
}

// GetForStudent 挑战详情 + 该学生最近的提交记录
func (s *ChallengeService) GetForStudent(userID, challengeID uint) (*model.Challenge, []model.Attempt, error) {
	challenge, err := s.ChallengeRepo.FindByID(challengeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, util.ErrChallengeNotFound
		}
		return nil, nil, err
	}

	attempts, err := s.AttemptRepo.ListByUserAndChallenge(userID, challengeID, 5)
	if err != nil {
		return nil, nil, err
	}
	return challenge, attempts, nil
}

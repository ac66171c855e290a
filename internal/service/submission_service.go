package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"algolearn_backend/pkg/logger"
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 失败两次之后的再次失败才生成AI反馈，避免每次早期失败都打反馈服务
const feedbackAttemptThreshold = 2

// SubmissionService 提交工作流：资格校验（先于任何网络调用）、
// 调用外部评测、落 Attempt、同事务更新画像、热力图、按需反馈。
type SubmissionService struct {
	AttemptRepo    *repository.AttemptRepository
	ChallengeRepo  *repository.ChallengeRepository
	ProfileService *ProfileService
	HeatmapService *HeatmapService
	Evaluator      *EvaluatorClient
	DB             *gorm.DB

	// 同一 (user, challenge) 的提交串行化：次数校验和写入之间
	// 不能有并发窗口，否则两个并发提交可能一起越过 max_attempts
	locks sync.Map

	// 画像是按用户一行的物化视图，同一用户跨挑战的并发提交
	// 也要串行更新，否则后提交的 Save 会覆盖先提交的累计值
	profileLocks sync.Map
}

func NewSubmissionService(
	attemptRepo *repository.AttemptRepository,
	challengeRepo *repository.ChallengeRepository,
	profileService *ProfileService,
	heatmapService *HeatmapService,
	evaluator *EvaluatorClient,
	db *gorm.DB,
) *SubmissionService {
	return &SubmissionService{
		AttemptRepo:    attemptRepo,
		ChallengeRepo:  challengeRepo,
		ProfileService: profileService,
		HeatmapService: heatmapService,
		Evaluator:      evaluator,
		DB:             db,
	}
}

// SubmitRequest 一次提交的输入
type SubmitRequest struct {
	Code      string `json:"code" binding:"required"`
	TimeSpent int    `json:"timeSpent"`
	HintsUsed int    `json:"hintsUsed"`
}

type pairKey struct {
	userID      uint
	challengeID uint
}

func (s *SubmissionService) pairLock(userID, challengeID uint) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(pairKey{userID, challengeID}, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *SubmissionService) profileLock(userID uint) *sync.Mutex {
	v, _ := s.profileLocks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Submit 完整的提交流程。
//
// 评测服务不可用时提交仍然会被记录（零分、错误信息落在 Attempt 上），
// 也就是说这次机会被消耗了。这是沿用原有的明确策略：无论评测服务
// 状态如何，次数消耗行为保持一致。
func (s *SubmissionService) Submit(ctx context.Context, userID, challengeID uint, req SubmitRequest) (*model.Attempt, error) {
	challenge, err := s.ChallengeRepo.FindByID(challengeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}

	if !challenge.IsActive {
		return nil, util.ErrChallengeInactive
	}

	lock := s.pairLock(userID, challengeID)
	lock.Lock()
	defer lock.Unlock()

	// 本地快速校验，先于任何网络调用：评测可能很慢，而次数是
	// 用户可见的稀缺资源，超限的提交绝不应该打到评测服务
	priorCount, err := s.AttemptRepo.CountByUserAndChallenge(userID, challengeID)
	if err != nil {
		return nil, err
	}
	if priorCount >= int64(challenge.MaxAttempts) {
		return nil, util.ErrAttemptLimitReached
	}

	result, evalErr := s.Evaluator.Evaluate(ctx, req.Code, challenge.TestCases, "")
	if evalErr != nil {
		// 评测不可用：降级为零分结果，错误原样记录，绝不凭空造分
		logger.Log.Error("evaluation service unavailable",
			zap.Uint("userId", userID),
			zap.Uint("challengeId", challengeID),
			zap.Error(evalErr))
		result = &EvaluationResult{
			TestResults: []model.TestCaseResult{},
			Error:       evalErr.Error(),
		}
	}

	resultsJSON, _ := json.Marshal(result.TestResults)
	attempt := &model.Attempt{
		UserID:        userID,
		ChallengeID:   challengeID,
		SubmittedCode: req.Code,
		TestResults:   resultsJSON,
		IsSuccessful:  result.Success,
		Score:         result.Score,
		ExecutionTime: result.ExecutionTime,
		MemoryUsed:    result.MemoryUsed,
		ErrorMessage:  result.Error,
		HintsUsed:     req.HintsUsed,
		TimeSpent:     req.TimeSpent,
	}

	// Attempt 写入和画像更新必须原子：两者之间不允许出现
	// 只写了一半的状态（画像仍可通过 Rebuild 从日志对账）。
	// 画像行按用户加锁：不同挑战的并发提交持有的是不同的
	// pairLock，读-改-写同一画像行时仍需互斥
	uLock := s.profileLock(userID)
	uLock.Lock()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}

		var profile model.LearnerProfile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			profile = *model.NewLearnerProfile(userID)
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		}

		s.ProfileService.Apply(&profile, attempt, challenge, time.Now())
		return tx.Save(&profile).Error
	})
	uLock.Unlock()
	if err != nil {
		// 持久化失败是硬错误：下游（热力图、反馈）一概不执行
		return nil, err
	}

	if err := s.HeatmapService.Record(attempt, result.TestResults); err != nil {
		logger.Log.Warn("heatmap recording failed",
			zap.Uint("attemptId", attempt.ID),
			zap.Error(err))
	}

	if attempt.IsSuccessful || priorCount > feedbackAttemptThreshold {
		s.attachFeedback(ctx, attempt)
	}

	// 通知外部画像服务，不阻塞请求
	go func(a model.Attempt, c model.Challenge) {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Evaluator.NotifyProfileUpdate(notifyCtx, userID, &a, &c)
	}(*attempt, *challenge)

	return attempt, nil
}

// attachFeedback 反馈失败不致命，AIFeedback 保持为空
func (s *SubmissionService) attachFeedback(ctx context.Context, attempt *model.Attempt) {
	feedback, err := s.Evaluator.Recommend(ctx, attempt.ID, attempt.SubmittedCode, attempt.TestResults, attempt.ErrorMessage)
	if err != nil {
		logger.Log.Warn("feedback generation failed",
			zap.Uint("attemptId", attempt.ID),
			zap.Error(err))
		return
	}

	if err := s.AttemptRepo.UpdateAIFeedback(attempt.ID, feedback); err != nil {
		logger.Log.Warn("failed to persist AI feedback",
			zap.Uint("attemptId", attempt.ID),
			zap.Error(err))
		return
	}
	attempt.AIFeedback = feedback
}

package util

import "errors"

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrChallengeInactive    = errors.New("challenge is not active")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptLimitReached  = errors.New("maximum attempts reached for this challenge")
	ErrCompetencyNotFound   = errors.New("competency not found")
	ErrProfileNotFound      = errors.New("learner profile not found")
	ErrInvalidTestCases     = errors.New("test cases must be valid JSON")
	ErrEvaluatorUnavailable = errors.New("evaluation service unavailable")
)

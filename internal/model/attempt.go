package model

import "encoding/json"

// TestCaseResult 单个测试用例的归一化评测结果。
// 评测服务的响应字段是松散的（可选字段、命名不一致），
// 边界处统一转换成这个内部形态，后续逻辑不再关心原始负载长什么样。
type TestCaseResult struct {
	Passed    bool   `json:"passed"`
	ErrorLine *int   `json:"error_line,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Attempt 一次提交及其评测结果，创建后不可变（仅 AIFeedback 允许事后补写）
// swagger:model Attempt
type Attempt struct {
	BaseModel

	UserID      uint `gorm:"index:idx_user_challenge;type:bigint unsigned;not null" json:"userId"`
	ChallengeID uint `gorm:"index:idx_user_challenge;type:bigint unsigned;not null" json:"challengeId"`

	SubmittedCode string          `gorm:"type:text;not null" json:"submittedCode"`
	TestResults   json.RawMessage `gorm:"type:json" json:"testResults"`
	IsSuccessful  bool            `gorm:"default:false" json:"isSuccessful"`
	Score         int             `gorm:"default:0" json:"score"`
	ExecutionTime *float64        `json:"executionTime,omitempty"` // 毫秒
	MemoryUsed    *int            `json:"memoryUsed,omitempty"`    // KB
	ErrorMessage  string          `gorm:"type:text" json:"errorMessage,omitempty"`
	AIFeedback    json.RawMessage `gorm:"type:json" json:"aiFeedback,omitempty"` // 创建后异步补写
	HintsUsed     int             `gorm:"default:0" json:"hintsUsed"`
	TimeSpent     int             `gorm:"default:0" json:"timeSpent"` // 秒

	Challenge *Challenge `gorm:"foreignKey:ChallengeID" json:"challenge,omitempty"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// ParsedTestResults 反序列化存储的测试结果；损坏或为空时返回空切片
func (a *Attempt) ParsedTestResults() []TestCaseResult {
	if len(a.TestResults) == 0 {
		return nil
	}
	var results []TestCaseResult
	if err := json.Unmarshal(a.TestResults, &results); err != nil {
		return nil
	}
	return results
}

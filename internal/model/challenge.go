package model

import "encoding/json"

const (
	ChallengeDifficultyEasy   = "easy"
	ChallengeDifficultyMedium = "medium"
	ChallengeDifficultyHard   = "hard"
)

// swagger:model Challenge
type Challenge struct {
	BaseModel

	Title            string `gorm:"size:255;not null" json:"title"`
	Description      string `gorm:"type:text" json:"description"`
	ProblemStatement string `gorm:"type:text" json:"problemStatement"`
	CompetencyID     uint   `gorm:"index;type:bigint unsigned;not null" json:"competencyId"`
	Difficulty       string `gorm:"size:20;default:'medium'" json:"difficulty"`
	StarterCode      string `gorm:"type:text" json:"starterCode"`

	// TestCases 是评测的唯一依据（有序的 {input, output} 数组），提交流程绝不修改它
	TestCases json.RawMessage `gorm:"type:json" json:"testCases"`
	Hints     json.RawMessage `gorm:"type:json" json:"hints,omitempty"`

	MaxAttempts int  `gorm:"default:10" json:"maxAttempts"`
	TimeLimit   int  `gorm:"default:30" json:"timeLimit"` // 分钟
	Points      int  `gorm:"default:100" json:"points"`
	IsActive    bool `gorm:"default:true" json:"isActive"`

	Competency *Competency `gorm:"foreignKey:CompetencyID" json:"competency,omitempty"`
}

func (Challenge) TableName() string {
	return "challenges"
}

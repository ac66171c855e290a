package model

const (
	HeatmapStatusCorrect = "correct"
	HeatmapStatusError   = "error"
	HeatmapStatusWarning = "warning"
	HeatmapStatusInfo    = "info"
)

// HeatmapLine 按 (attempt_id, line_number) 唯一的逐行错误聚合。
// 重复检测到同一行时 frequency 累加，status/message 以最后一次为准。
// swagger:model HeatmapLine
type HeatmapLine struct {
	BaseModel

	UserID      uint `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	ChallengeID uint `gorm:"index;type:bigint unsigned;not null" json:"challengeId"`
	AttemptID   uint `gorm:"uniqueIndex:idx_attempt_line;type:bigint unsigned;not null" json:"attemptId"`
	LineNumber  int  `gorm:"uniqueIndex:idx_attempt_line;not null" json:"lineNumber"`

	Status    string `gorm:"size:20;default:'info'" json:"status"`
	Message   string `gorm:"type:text" json:"message,omitempty"`
	Frequency int    `gorm:"default:1" json:"frequency"`
}

func (HeatmapLine) TableName() string {
	return "heatmap_lines"
}

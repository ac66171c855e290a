package model

import (
	"encoding/json"
	"time"
)

const (
	LearningStyleVisual     = "visual"
	LearningStyleVerbal     = "verbal"
	LearningStyleSequential = "sequential"
	LearningStyleGlobal     = "global"
)

const (
	PaceSlow     = "slow"
	PaceModerate = "moderate"
	PaceFast     = "fast"
)

const initialMotivationScore = 50

// LearnerProfile 学生的滚动聚合画像，与用户一对一。
// 它是 Attempt 日志的物化视图：total/successful/competency_scores 都可由日志重算，
// 只允许画像更新步骤修改，用户侧接口只读。
// swagger:model LearnerProfile
type LearnerProfile struct {
	BaseModel

	UserID uint `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`

	// 行为画像
	TotalAttempts           int     `gorm:"default:0" json:"totalAttempts"`
	SuccessfulAttempts      int     `gorm:"default:0" json:"successfulAttempts"`
	AverageTimePerChallenge float64 `gorm:"default:0" json:"averageTimePerChallenge"` // 秒
	HintsUsed               int     `gorm:"default:0" json:"hintsUsed"`

	// 动机画像
	EngagementLevel  float64    `gorm:"default:50" json:"engagementLevel"`
	PersistenceScore float64    `gorm:"default:50" json:"persistenceScore"`
	StreakDays       int        `gorm:"default:0" json:"streakDays"`
	LastActiveDate   *time.Time `json:"lastActiveDate,omitempty"`

	// 学习风格
	LearningStyle string `gorm:"size:20;default:'sequential'" json:"learningStyle"`
	Pace          string `gorm:"size:20;default:'moderate'" json:"pace"`

	// 表现指标
	CompetencyScores   json.RawMessage `gorm:"type:json" json:"competencyScores"` // competency_id -> score
	OverallPerformance float64         `gorm:"default:0" json:"overallPerformance"`
}

func (LearnerProfile) TableName() string {
	return "learner_profiles"
}

// NewLearnerProfile 新画像的起始状态，与数据库列默认值保持一致
func NewLearnerProfile(userID uint) *LearnerProfile {
	return &LearnerProfile{
		UserID:           userID,
		EngagementLevel:  initialMotivationScore,
		PersistenceScore: initialMotivationScore,
		LearningStyle:    LearningStyleSequential,
		Pace:             PaceModerate,
	}
}

// ScoresMap 反序列化能力分数表；空或损坏时返回空map
func (p *LearnerProfile) ScoresMap() map[uint]float64 {
	scores := map[uint]float64{}
	if len(p.CompetencyScores) > 0 {
		json.Unmarshal(p.CompetencyScores, &scores)
	}
	return scores
}

func (p *LearnerProfile) SetScoresMap(scores map[uint]float64) {
	b, _ := json.Marshal(scores)
	p.CompetencyScores = b
}

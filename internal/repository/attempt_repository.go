package repository

import (
	"algolearn_backend/internal/model"
	"encoding/json"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByUserAndChallenge(userID, challengeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Count(&count).Error
	return count, err
}

// UpdateAIFeedback Attempt 创建后唯一允许的补写：挂接AI反馈
func (r *AttemptRepository) UpdateAIFeedback(attemptID uint, feedback json.RawMessage) error {
	return r.DB.Model(&model.Attempt{}).
		Where("id = ?", attemptID).
		Update("ai_feedback", feedback).Error
}

func (r *AttemptRepository) ListByUser(userID uint, limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Preload("Challenge").
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUserAndChallenge(userID, challengeID uint, limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Order("created_at DESC").Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

// ListAllByUser 用户的完整提交日志（按时间升序），画像重建的输入
func (r *AttemptRepository) ListAllByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Preload("Challenge").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListRecent(limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Preload("Challenge").Preload("User").
		Order("created_at DESC").Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountSuccessful() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).Where("is_successful = ?", true).Count(&count).Error
	return count, err
}

// UserChallengeStat 学生在单个挑战上的聚合
type UserChallengeStat struct {
	ChallengeID uint `json:"challengeId"`
	Attempts    int  `json:"attempts"`
	BestScore   int  `json:"bestScore"`
	Successes   int  `json:"successes"`
}

// StatsByUser 按挑战聚合某学生的尝试次数与最高分
func (r *AttemptRepository) StatsByUser(userID uint) (map[uint]UserChallengeStat, error) {
	var rows []UserChallengeStat
	err := r.DB.Model(&model.Attempt{}).
		Select("challenge_id, COUNT(*) AS attempts, MAX(score) AS best_score, "+
			"SUM(CASE WHEN is_successful THEN 1 ELSE 0 END) AS successes").
		Where("user_id = ?", userID).
		Group("challenge_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[uint]UserChallengeStat, len(rows))
	for _, row := range rows {
		stats[row.ChallengeID] = row
	}
	return stats, nil
}

// CompetencyStat 按能力域聚合的全局表现（教师分析页）
type CompetencyStat struct {
	CompetencyID  uint    `json:"competencyId"`
	Name          string  `json:"name"`
	TotalAttempts int     `json:"totalAttempts"`
	Successful    int     `json:"successful"`
	AverageScore  float64 `json:"averageScore"`
}

func (r *AttemptRepository) StatsByCompetency() ([]CompetencyStat, error) {
	var rows []CompetencyStat
	err := r.DB.Model(&model.Attempt{}).
		Select("challenges.competency_id AS competency_id, competencies.name AS name, "+
			"COUNT(attempts.id) AS total_attempts, "+
			"SUM(CASE WHEN attempts.is_successful THEN 1 ELSE 0 END) AS successful, "+
			"AVG(attempts.score) AS average_score").
		Joins("JOIN challenges ON challenges.id = attempts.challenge_id").
		Joins("JOIN competencies ON competencies.id = challenges.competency_id").
		Group("challenges.competency_id, competencies.name").
		Scan(&rows).Error
	return rows, err
}

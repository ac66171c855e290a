package repository

import (
	"algolearn_backend/internal/model"

	"gorm.io/gorm"
)

type HeatmapRepository struct {
	DB *gorm.DB
}

func NewHeatmapRepository(db *gorm.DB) *HeatmapRepository {
	return &HeatmapRepository{DB: db}
}

// Upsert 按 (attempt_id, line_number) 落一条热力数据：
// 已存在时覆盖 status/message 并累加 frequency，否则新建 frequency=1
func (r *HeatmapRepository) Upsert(line *model.HeatmapLine) error {
	var existing model.HeatmapLine
	err := r.DB.Where("attempt_id = ? AND line_number = ?", line.AttemptID, line.LineNumber).
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	if existing.ID == 0 {
		line.Frequency = 1
		return r.DB.Create(line).Error
	}

	existing.Status = line.Status
	existing.Message = line.Message
	existing.Frequency++
	return r.DB.Save(&existing).Error
}

func (r *HeatmapRepository) ListByAttempt(attemptID uint) ([]model.HeatmapLine, error) {
	var lines []model.HeatmapLine
	err := r.DB.Where("attempt_id = ?", attemptID).Order("line_number ASC").Find(&lines).Error
	return lines, err
}

// List 按挑战/用户过滤，两个条件都可选
func (r *HeatmapRepository) List(challengeID, userID uint) ([]model.HeatmapLine, error) {
	query := r.DB.Model(&model.HeatmapLine{})
	if challengeID != 0 {
		query = query.Where("challenge_id = ?", challengeID)
	}
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}

	var lines []model.HeatmapLine
	err := query.Order("line_number ASC").Find(&lines).Error
	return lines, err
}

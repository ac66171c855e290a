package repository

import (
	"algolearn_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) Create(c *model.Challenge) error {
	return r.DB.Create(c).Error
}

func (r *ChallengeRepository) Update(c *model.Challenge) error {
	return r.DB.Save(c).Error
}

func (r *ChallengeRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Challenge{}, id).Error
}

func (r *ChallengeRepository) FindByID(id uint) (*model.Challenge, error) {
	var c model.Challenge
	if err := r.DB.Preload("Competency").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListActive 学生可见的挑战列表
func (r *ChallengeRepository) ListActive(page, limit int) ([]model.Challenge, int64, error) {
	var list []model.Challenge
	var total int64

	query := r.DB.Model(&model.Challenge{}).Where("is_active = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Competency").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	return list, total, err
}

// List 教师侧完整列表（含未激活）
func (r *ChallengeRepository) List(page, limit int) ([]model.Challenge, int64, error) {
	var list []model.Challenge
	var total int64

	if err := r.DB.Model(&model.Challenge{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Preload("Competency").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *ChallengeRepository) ListByCompetency(competencyID uint) ([]model.Challenge, error) {
	var list []model.Challenge
	err := r.DB.Where("competency_id = ?", competencyID).Find(&list).Error
	return list, err
}

func (r *ChallengeRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Challenge{}).Count(&count).Error
	return count, err
}

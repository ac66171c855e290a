package repository

import (
	"algolearn_backend/internal/model"

	"gorm.io/gorm"
)

type CompetencyRepository struct {
	DB *gorm.DB
}

func NewCompetencyRepository(db *gorm.DB) *CompetencyRepository {
	return &CompetencyRepository{DB: db}
}

func (r *CompetencyRepository) Create(c *model.Competency) error {
	return r.DB.Create(c).Error
}

func (r *CompetencyRepository) Update(c *model.Competency) error {
	return r.DB.Save(c).Error
}

func (r *CompetencyRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Competency{}, id).Error
}

func (r *CompetencyRepository) FindByID(id uint) (*model.Competency, error) {
	var c model.Competency
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompetencyRepository) FindByIDs(ids []uint) ([]model.Competency, error) {
	var list []model.Competency
	err := r.DB.Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *CompetencyRepository) List(page, limit int) ([]model.Competency, int64, error) {
	var list []model.Competency
	var total int64

	if err := r.DB.Model(&model.Competency{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("level ASC, name ASC").Offset((page - 1) * limit).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *CompetencyRepository) ListAll() ([]model.Competency, error) {
	var list []model.Competency
	err := r.DB.Order("level ASC, name ASC").Find(&list).Error
	return list, err
}

func (r *CompetencyRepository) CountChallenges(competencyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Challenge{}).Where("competency_id = ?", competencyID).Count(&count).Error
	return count, err
}

func (r *CompetencyRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Competency{}).Count(&count).Error
	return count, err
}

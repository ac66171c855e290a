package repository

import (
	"algolearn_backend/internal/model"

	"gorm.io/gorm"
)

type LearnerProfileRepository struct {
	DB *gorm.DB
}

func NewLearnerProfileRepository(db *gorm.DB) *LearnerProfileRepository {
	return &LearnerProfileRepository{DB: db}
}

func (r *LearnerProfileRepository) Create(p *model.LearnerProfile) error {
	return r.DB.Create(p).Error
}

func (r *LearnerProfileRepository) Save(p *model.LearnerProfile) error {
	return r.DB.Save(p).Error
}

func (r *LearnerProfileRepository) FindByUserID(userID uint) (*model.LearnerProfile, error) {
	var p model.LearnerProfile
	if err := r.DB.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindOrCreate 画像懒创建：学生首次访问时建立空画像
func (r *LearnerProfileRepository) FindOrCreate(userID uint) (*model.LearnerProfile, error) {
	p, err := r.FindByUserID(userID)
	if err == nil {
		return p, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	p = model.NewLearnerProfile(userID)
	if err := r.DB.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *LearnerProfileRepository) ListByUserIDs(userIDs []uint) ([]model.LearnerProfile, error) {
	var profiles []model.LearnerProfile
	err := r.DB.Where("user_id IN ?", userIDs).Find(&profiles).Error
	return profiles, err
}

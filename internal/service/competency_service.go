package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"fmt"

	"gorm.io/gorm"
)

type CompetencyService struct {
	CompetencyRepo *repository.CompetencyRepository
}

func NewCompetencyService(competencyRepo *repository.CompetencyRepository) *CompetencyService {
	return &CompetencyService{CompetencyRepo: competencyRepo}
}

type CompetencyRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description string  `json:"description"`
	Domain      string  `json:"domain" binding:"required,max=100"`
	Level       int     `json:"level" binding:"required,min=1,max=10"`
	MaxScore    int     `json:"maxScore"`
}

func (s *CompetencyService) Create(req CompetencyRequest) (*model.Competency, error) {
	competency := &model.Competency{
		Name:        req.Name,
		Description: req.Description,
		Domain:      req.Domain,
		Level:       req.Level,
		MaxScore:    req.MaxScore,
	}
	if competency.MaxScore == 0 {
		competency.MaxScore = 100
	}
	if err := s.CompetencyRepo.Create(competency); err != nil {
		return nil, err
	}
	return competency, nil
}

func (s *CompetencyService) Update(id uint, req CompetencyRequest) (*model.Competency, error) {
	competency, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	competency.Name = req.Name
	competency.Description = req.Description
	competency.Domain = req.Domain
	competency.Level = req.Level
	if req.MaxScore > 0 {
		competency.MaxScore = req.MaxScore
	}

	if err := s.CompetencyRepo.Update(competency); err != nil {
		return nil, err
	}
	return competency, nil
}

// Delete 仅允许删除没有挂载挑战的能力域
func (s *CompetencyService) Delete(id uint) error {
	competency, err := s.Get(id)
	if err != nil {
		return err
	}

	count, err := s.CompetencyRepo.CountChallenges(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("能力域 %s 下仍有 %d 个挑战，无法删除", competency.Name, count)
	}
	return s.CompetencyRepo.Delete(id)
}

func (s *CompetencyService) Get(id uint) (*model.Competency, error) {
	competency, err := s.CompetencyRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCompetencyNotFound
		}
		return nil, err
	}
	return competency, nil
}

func (s *CompetencyService) List(page, limit int) ([]model.Competency, int64, error) {
	return s.CompetencyRepo.List(page, limit)
}

package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 管理员侧的用户管理和通用的用户资料维护
type UserService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.LearnerProfileRepository
}

func NewUserService(userRepo *repository.UserRepository, profileRepo *repository.LearnerProfileRepository) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
	}
}

// CreateUserRequest 管理员创建用户
type CreateUserRequest struct {
	Name      string         `json:"name" binding:"required,max=255"`
	Email     string         `json:"email" binding:"required,email"`
	Password  string         `json:"password" binding:"required,min=8"`
	Role      model.UserRole `json:"role" binding:"required,oneof=admin teacher student"`
	StudentID *string        `json:"studentId"`
}

func (s *UserService) CreateUser(req CreateUserRequest) (*model.User, error) {
	if _, err := s.UserRepo.FindByEmail(req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		StudentID: req.StudentID,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	if user.IsStudent() {
		if _, err := s.ProfileRepo.FindOrCreate(user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// UpdateUserRequest 管理员更新用户，密码留空则不变
type UpdateUserRequest struct {
	Name      string         `json:"name" binding:"required,max=255"`
	Email     string         `json:"email" binding:"required,email"`
	Role      model.UserRole `json:"role" binding:"required,oneof=admin teacher student"`
	StudentID *string        `json:"studentId"`
	Password  string         `json:"password"`
}

func (s *UserService) UpdateUser(id uint, req UpdateUserRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if existing, err := s.UserRepo.FindByEmail(req.Email); err == nil && existing.ID != id {
		return nil, util.ErrEmailRegistered
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Role = req.Role
	user.StudentID = req.StudentID

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(id uint) error {
	if _, err := s.UserRepo.FindByID(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrUserNotFound
		}
		return err
	}
	return s.UserRepo.Delete(id)
}

func (s *UserService) GetUsers(role model.UserRole, page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.List(role, page, limit)
}

func (s *UserService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfileRequest 用户自己的资料维护
type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Avatar string `json:"avatar"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	user.Name = req.Name
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetAvatar(userID uint, url string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}
	user.Avatar = url
	return s.UserRepo.Update(user)
}

package service

import (
	"algolearn_backend/internal/config"
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo    *repository.UserRepository
	ProfileRepo *repository.LearnerProfileRepository
	Cfg         *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, profileRepo *repository.LearnerProfileRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
		Cfg:         cfg,
	}
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)

	if err := s.UserRepo.Create(user); err != nil {
		return err
	}

	// 学生注册即建立空画像（也支持首次访问时懒创建）
	if user.IsStudent() {
		if _, err := s.ProfileRepo.FindOrCreate(user.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrUserNotFound
	}

	if user.Disabled {
		return "", util.ErrPermissionDenied
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrUserNotFound
	}

	s.UserRepo.UpdateLastLogin(user.ID)

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}

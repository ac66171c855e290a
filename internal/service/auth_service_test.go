package service

import (
	"algolearn_backend/internal/config"
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (*AuthService, *gorm.DB) {
	db := newTestDB(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-0123456789abcdef0123456789"
	cfg.JWT.ExpireTime = time.Hour

	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewLearnerProfileRepository(db),
		cfg,
	)
	return svc, db
}

func TestRegisterStudentCreatesProfile(t *testing.T) {
	svc, db := newAuthFixture(t)

	user := &model.User{
		Name:     "张三",
		Email:    "zhangsan@test.local",
		Password: "password123",
		Role:     model.Student,
	}
	require.NoError(t, svc.Register(user))
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password123", user.Password, "密码必须散列存储")

	var profile model.LearnerProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, float64(50), profile.EngagementLevel)
}

func TestRegisterTeacherSkipsProfile(t *testing.T) {
	svc, db := newAuthFixture(t)

	user := &model.User{Name: "李老师", Email: "li@test.local", Password: "password123", Role: model.Teacher}
	require.NoError(t, svc.Register(user))

	var count int64
	db.Model(&model.LearnerProfile{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	first := &model.User{Name: "a", Email: "dup@test.local", Password: "password123", Role: model.Student}
	require.NoError(t, svc.Register(first))

	second := &model.User{Name: "b", Email: "dup@test.local", Password: "password123", Role: model.Student}
	require.ErrorIs(t, svc.Register(second), util.ErrEmailRegistered)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user := &model.User{Name: "a", Email: "login@test.local", Password: "password123", Role: model.Student}
	require.NoError(t, svc.Register(user))

	token, err := svc.Login("login@test.local", "password123")
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, svc.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user := &model.User{Name: "a", Email: "wp@test.local", Password: "password123", Role: model.Student}
	require.NoError(t, svc.Register(user))

	_, err := svc.Login("wp@test.local", "nope")
	require.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, db := newAuthFixture(t)

	user := &model.User{Name: "a", Email: "dis@test.local", Password: "password123", Role: model.Student}
	require.NoError(t, svc.Register(user))
	require.NoError(t, db.Model(user).Update("disabled", true).Error)

	_, err := svc.Login("dis@test.local", "password123")
	require.ErrorIs(t, err, util.ErrPermissionDenied)
}

package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/pkg/logger"
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库一个连接一份数据，必须收紧到单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Competency{},
		&model.Challenge{},
		&model.Attempt{},
		&model.LearnerProfile{},
		&model.HeatmapLine{},
	))
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:     "测试学生",
		Email:    email,
		Password: "hashed",
		Role:     model.Student,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedChallenge(t *testing.T, db *gorm.DB, maxAttempts int) *model.Challenge {
	t.Helper()

	competency := &model.Competency{
		Name:     "Basic Algorithms",
		Domain:   "algorithms",
		Level:    1,
		MaxScore: 100,
	}
	require.NoError(t, db.Create(competency).Error)

	challenge := &model.Challenge{
		Title:            "两数之和",
		Description:      "返回数组中和为目标值的两个下标",
		ProblemStatement: "实现 twoSum(nums, target)",
		CompetencyID:     competency.ID,
		Difficulty:       model.ChallengeDifficultyEasy,
		TestCases:        json.RawMessage(`[{"input":"[2,7,11,15], 9","expected":"[0,1]"}]`),
		MaxAttempts:      maxAttempts,
		TimeLimit:        30,
		Points:           100,
		IsActive:         true,
	}
	require.NoError(t, db.Create(challenge).Error)
	return challenge
}

func intPtr(v int) *int { return &v }

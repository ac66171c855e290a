package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(t *testing.T) (*ProfileService, *repository.LearnerProfileRepository, *repository.AttemptRepository) {
	db := newTestDB(t)
	profileRepo := repository.NewLearnerProfileRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	return NewProfileService(profileRepo, attemptRepo), profileRepo, attemptRepo
}

func TestApplySuccessfulAttempt(t *testing.T) {
	svc, _, _ := newProfileService(t)

	profile := model.NewLearnerProfile(1)
	challenge := &model.Challenge{CompetencyID: 7}
	attempt := &model.Attempt{IsSuccessful: true, Score: 100, TimeSpent: 120, HintsUsed: 1}

	svc.Apply(profile, attempt, challenge, time.Now())

	assert.Equal(t, 1, profile.TotalAttempts)
	assert.Equal(t, 1, profile.SuccessfulAttempts)
	assert.Equal(t, float64(100), profile.OverallPerformance)
	assert.Equal(t, float64(10), profile.ScoresMap()[7])
	assert.Equal(t, float64(120), profile.AverageTimePerChallenge)
	assert.Equal(t, 1, profile.HintsUsed)
}

func TestApplyFailedAttemptTracksCompetency(t *testing.T) {
	svc, _, _ := newProfileService(t)

	profile := model.NewLearnerProfile(1)
	challenge := &model.Challenge{CompetencyID: 3}
	attempt := &model.Attempt{IsSuccessful: false}

	svc.Apply(profile, attempt, challenge, time.Now())

	// 失败也要在分数表里登记能力域，只是得分为0
	scores := profile.ScoresMap()
	score, ok := scores[3]
	require.True(t, ok)
	assert.Equal(t, float64(0), score)
	assert.Equal(t, float64(0), profile.OverallPerformance)

	// 失败后坚持分+1
	assert.Equal(t, float64(51), profile.PersistenceScore)
}

func TestApplyCompetencyScoreCapped(t *testing.T) {
	svc, _, _ := newProfileService(t)

	profile := model.NewLearnerProfile(1)
	challenge := &model.Challenge{CompetencyID: 2}

	for i := 0; i < 15; i++ {
		svc.Apply(profile, &model.Attempt{IsSuccessful: true}, challenge, time.Now())
	}

	assert.Equal(t, float64(100), profile.ScoresMap()[2], "能力分封顶100")
}

func TestApplyStreakTransitions(t *testing.T) {
	svc, _, _ := newProfileService(t)
	challenge := &model.Challenge{CompetencyID: 1}
	day := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	profile := model.NewLearnerProfile(1)

	// 首次活跃
	svc.Apply(profile, &model.Attempt{}, challenge, day)
	assert.Equal(t, 1, profile.StreakDays)

	// 同一天再提交：不变
	svc.Apply(profile, &model.Attempt{}, challenge, day.Add(2*time.Hour))
	assert.Equal(t, 1, profile.StreakDays)

	// 次日：+1
	svc.Apply(profile, &model.Attempt{}, challenge, day.AddDate(0, 0, 1))
	assert.Equal(t, 2, profile.StreakDays)

	// 断档三天：归1，参与度下降
	engagementBefore := profile.EngagementLevel
	svc.Apply(profile, &model.Attempt{}, challenge, day.AddDate(0, 0, 4))
	assert.Equal(t, 1, profile.StreakDays)
	assert.Less(t, profile.EngagementLevel, engagementBefore)
}

func TestApplyRollingAverageTime(t *testing.T) {
	svc, _, _ := newProfileService(t)
	challenge := &model.Challenge{CompetencyID: 1}
	profile := model.NewLearnerProfile(1)

	svc.Apply(profile, &model.Attempt{TimeSpent: 100}, challenge, time.Now())
	svc.Apply(profile, &model.Attempt{TimeSpent: 200}, challenge, time.Now())

	assert.InDelta(t, 150, profile.AverageTimePerChallenge, 0.001)
}

func TestRebuildReconstructsFromLog(t *testing.T) {
	db := newTestDB(t)
	profileRepo := repository.NewLearnerProfileRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	svc := NewProfileService(profileRepo, attemptRepo)

	user := seedStudent(t, db, "rebuild@test.local")
	challenge := seedChallenge(t, db, 10)

	attempts := []model.Attempt{
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "a", IsSuccessful: false, TimeSpent: 60},
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "b", IsSuccessful: true, Score: 100, TimeSpent: 90, HintsUsed: 2},
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "c", IsSuccessful: true, Score: 100, TimeSpent: 30},
	}
	for i := range attempts {
		require.NoError(t, db.Create(&attempts[i]).Error)
	}

	// 画像里先写入错误的聚合值，模拟部分失败后的脏状态
	profile, err := profileRepo.FindOrCreate(user.ID)
	require.NoError(t, err)
	profile.TotalAttempts = 99
	profile.SuccessfulAttempts = 99
	require.NoError(t, profileRepo.Save(profile))

	rebuilt, err := svc.Rebuild(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, rebuilt.TotalAttempts)
	assert.Equal(t, 2, rebuilt.SuccessfulAttempts)
	assert.InDelta(t, 66.666, rebuilt.OverallPerformance, 0.01)
	assert.Equal(t, float64(20), rebuilt.ScoresMap()[challenge.CompetencyID])
	assert.Equal(t, 2, rebuilt.HintsUsed)
	assert.InDelta(t, 60, rebuilt.AverageTimePerChallenge, 0.001)
}

func TestRebuildEmptyLog(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(repository.NewLearnerProfileRepository(db), repository.NewAttemptRepository(db))

	user := seedStudent(t, db, "empty@test.local")
	rebuilt, err := svc.Rebuild(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, rebuilt.TotalAttempts)
	assert.Equal(t, float64(0), rebuilt.OverallPerformance)
	assert.Empty(t, rebuilt.ScoresMap())
}

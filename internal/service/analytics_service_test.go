package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAnalyticsFixture(t *testing.T) (*AnalyticsService, *gorm.DB) {
	db := newTestDB(t)
	svc := NewAnalyticsService(
		repository.NewUserRepository(db),
		repository.NewChallengeRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewLearnerProfileRepository(db),
		repository.NewCompetencyRepository(db),
		nil,
		NewCacheService(nil),
	)
	return svc, db
}

func TestTeacherDashboardAggregates(t *testing.T) {
	svc, db := newAnalyticsFixture(t)
	user := seedStudent(t, db, "a1@test.local")
	challenge := seedChallenge(t, db, 10)

	attempts := []model.Attempt{
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "x", IsSuccessful: true, Score: 100},
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "y"},
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "z"},
	}
	for i := range attempts {
		require.NoError(t, db.Create(&attempts[i]).Error)
	}

	dashboard, err := svc.GetTeacherDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), dashboard.StudentCount)
	assert.Equal(t, int64(1), dashboard.ChallengeCount)
	assert.Equal(t, int64(3), dashboard.TotalAttempts)
	assert.InDelta(t, 33.33, dashboard.SuccessRate, 0.01)
	assert.Len(t, dashboard.RecentAttempts, 3)
}

func TestStudentDashboardLazilyCreatesProfile(t *testing.T) {
	svc, db := newAnalyticsFixture(t)
	user := seedStudent(t, db, "a2@test.local")

	dashboard, err := svc.GetStudentDashboard(user.ID)
	require.NoError(t, err)

	require.NotNil(t, dashboard.Profile)
	assert.Equal(t, user.ID, dashboard.Profile.UserID)
	assert.Equal(t, 0, dashboard.Stats.TotalAttempts)
}

func TestStudentsListAttachesProfiles(t *testing.T) {
	svc, db := newAnalyticsFixture(t)
	withProfile := seedStudent(t, db, "a3@test.local")
	seedStudent(t, db, "a4@test.local")

	profile := model.NewLearnerProfile(withProfile.ID)
	profile.TotalAttempts = 5
	require.NoError(t, db.Create(profile).Error)

	students, total, err := svc.GetStudents(1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, students, 2)

	byEmail := map[string]StudentWithProfile{}
	for _, s := range students {
		byEmail[s.User.Email] = s
	}
	require.NotNil(t, byEmail["a3@test.local"].Profile)
	assert.Equal(t, 5, byEmail["a3@test.local"].Profile.TotalAttempts)
	assert.Nil(t, byEmail["a4@test.local"].Profile)
}

func TestStudentDetailStats(t *testing.T) {
	svc, db := newAnalyticsFixture(t)
	user := seedStudent(t, db, "a5@test.local")
	challenge := seedChallenge(t, db, 10)

	attempts := []model.Attempt{
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "x", IsSuccessful: true, Score: 100},
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "y", Score: 20},
	}
	for i := range attempts {
		require.NoError(t, db.Create(&attempts[i]).Error)
	}

	detail, err := svc.GetStudentDetail(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, detail.Stats.TotalAttempts)
	assert.Equal(t, 1, detail.Stats.SuccessfulAttempts)
	assert.Equal(t, 1, detail.Stats.ChallengesAttempted)
	assert.Equal(t, float64(60), detail.Stats.AverageScore)
}

func TestStudentDetailUnknownUser(t *testing.T) {
	svc, _ := newAnalyticsFixture(t)
	_, err := svc.GetStudentDetail(404)
	require.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestCompetencyPerformance(t *testing.T) {
	svc, db := newAnalyticsFixture(t)
	user := seedStudent(t, db, "a6@test.local")
	challenge := seedChallenge(t, db, 10)

	attempts := []model.Attempt{
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "x", IsSuccessful: true, Score: 100},
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "y", Score: 0},
	}
	for i := range attempts {
		require.NoError(t, db.Create(&attempts[i]).Error)
	}

	stats, err := svc.GetCompetencyPerformance()
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, challenge.CompetencyID, stats[0].CompetencyID)
	assert.Equal(t, 2, stats[0].TotalAttempts)
	assert.Equal(t, 1, stats[0].Successful)
	assert.Equal(t, float64(50), stats[0].AverageScore)
}

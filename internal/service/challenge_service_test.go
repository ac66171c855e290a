package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newChallengeFixture(t *testing.T) (*ChallengeService, *gorm.DB) {
	db := newTestDB(t)
	svc := NewChallengeService(
		repository.NewChallengeRepository(db),
		repository.NewCompetencyRepository(db),
		repository.NewAttemptRepository(db),
		NewCacheService(nil),
	)
	return svc, db
}

func validChallengeRequest(competencyID uint) ChallengeRequest {
	return ChallengeRequest{
		Title:            "反转链表",
		Description:      "反转一个单链表",
		ProblemStatement: "实现 reverseList(head)",
		CompetencyID:     competencyID,
		Difficulty:       model.ChallengeDifficultyMedium,
		TestCases:        json.RawMessage(`[{"input":"[1,2,3]","expected":"[3,2,1]"}]`),
	}
}

func TestCreateChallengeAppliesDefaults(t *testing.T) {
	svc, db := newChallengeFixture(t)
	competency := &model.Competency{Name: "链表", Domain: "data_structures", Level: 2, MaxScore: 100}
	require.NoError(t, db.Create(competency).Error)

	challenge, err := svc.Create(validChallengeRequest(competency.ID))
	require.NoError(t, err)

	assert.Equal(t, 10, challenge.MaxAttempts)
	assert.Equal(t, 30, challenge.TimeLimit)
	assert.Equal(t, 100, challenge.Points)
	assert.True(t, challenge.IsActive)
}

func TestCreateChallengeUnknownCompetency(t *testing.T) {
	svc, _ := newChallengeFixture(t)
	_, err := svc.Create(validChallengeRequest(999))
	require.ErrorIs(t, err, util.ErrCompetencyNotFound)
}

func TestCreateChallengeInvalidTestCases(t *testing.T) {
	svc, db := newChallengeFixture(t)
	competency := &model.Competency{Name: "x", Domain: "d", Level: 1, MaxScore: 100}
	require.NoError(t, db.Create(competency).Error)

	req := validChallengeRequest(competency.ID)
	req.TestCases = json.RawMessage(`{not json`)
	_, err := svc.Create(req)
	require.ErrorIs(t, err, util.ErrInvalidTestCases)
}

func TestListForStudentMergesProgress(t *testing.T) {
	svc, db := newChallengeFixture(t)
	user := seedStudent(t, db, "c1@test.local")
	challenge := seedChallenge(t, db, 5)

	attempts := []model.Attempt{
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "a", Score: 40},
		{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "b", Score: 100, IsSuccessful: true},
	}
	for i := range attempts {
		require.NoError(t, db.Create(&attempts[i]).Error)
	}

	items, total, err := svc.ListForStudent(context.Background(), user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)

	assert.Equal(t, 2, items[0].AttemptsCount)
	assert.Equal(t, 3, items[0].AttemptsLeft)
	assert.Equal(t, 100, items[0].BestScore)
	assert.True(t, items[0].Completed)
}

func TestListForStudentOmitsTestCases(t *testing.T) {
	svc, db := newChallengeFixture(t)
	user := seedStudent(t, db, "c5@test.local")
	seedChallenge(t, db, 5)

	items, _, err := svc.ListForStudent(context.Background(), user.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// 测试用例是评测依据，输入和期望输出都不能出现在学生端列表里
	assert.Nil(t, items[0].Challenge.TestCases)

	payload, err := json.Marshal(items[0])
	require.NoError(t, err)
	assert.NotContains(t, string(payload), `"expected"`)
}

func TestListForStudentHidesInactive(t *testing.T) {
	svc, db := newChallengeFixture(t)
	user := seedStudent(t, db, "c2@test.local")
	challenge := seedChallenge(t, db, 5)
	require.NoError(t, db.Model(challenge).Update("is_active", false).Error)

	items, total, err := svc.ListForStudent(context.Background(), user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, items)
}

func TestGetForStudentReturnsRecentAttempts(t *testing.T) {
	svc, db := newChallengeFixture(t)
	user := seedStudent(t, db, "c3@test.local")
	challenge := seedChallenge(t, db, 10)

	for i := 0; i < 7; i++ {
		a := &model.Attempt{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "x"}
		require.NoError(t, db.Create(a).Error)
	}

	got, attempts, err := svc.GetForStudent(user.ID, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.ID, got.ID)
	assert.Len(t, attempts, 5, "详情页只带最近5次提交")
}

func TestDeleteChallengeKeepsAttempts(t *testing.T) {
	svc, db := newChallengeFixture(t)
	user := seedStudent(t, db, "c4@test.local")
	challenge := seedChallenge(t, db, 10)

	attempt := &model.Attempt{UserID: user.ID, ChallengeID: challenge.ID, SubmittedCode: "x"}
	require.NoError(t, db.Create(attempt).Error)

	require.NoError(t, svc.Delete(challenge.ID))

	_, err := svc.Get(challenge.ID)
	require.ErrorIs(t, err, util.ErrChallengeNotFound)

	// 软删除：历史提交不受影响
	var count int64
	db.Model(&model.Attempt{}).Where("challenge_id = ?", challenge.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

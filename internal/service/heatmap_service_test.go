package service

import (
	"algolearn_backend/internal/model"
	"algolearn_backend/internal/repository"
	"algolearn_backend/internal/util"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newHeatmapFixture(t *testing.T) (*HeatmapService, *gorm.DB) {
	db := newTestDB(t)
	return NewHeatmapService(repository.NewHeatmapRepository(db), repository.NewAttemptRepository(db)), db
}

func seedAttempt(t *testing.T, db *gorm.DB, userID, challengeID uint, results []model.TestCaseResult) *model.Attempt {
	t.Helper()
	resultsJSON, err := json.Marshal(results)
	require.NoError(t, err)

	attempt := &model.Attempt{
		UserID:        userID,
		ChallengeID:   challengeID,
		SubmittedCode: "code",
		TestResults:   resultsJSON,
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

func TestRecordSkipsResultsWithoutLine(t *testing.T) {
	svc, db := newHeatmapFixture(t)
	user := seedStudent(t, db, "h1@test.local")
	challenge := seedChallenge(t, db, 10)

	results := []model.TestCaseResult{
		{Passed: true},
		{Passed: false, ErrorLine: intPtr(5), Message: "IndexError"},
		{Passed: false, Message: "无行号"},
	}
	attempt := seedAttempt(t, db, user.ID, challenge.ID, results)

	require.NoError(t, svc.Record(attempt, results))

	lines, err := svc.HeatmapRepo.ListByAttempt(attempt.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1, "只有带行号的结果落地")
	assert.Equal(t, 5, lines[0].LineNumber)
	assert.Equal(t, model.HeatmapStatusError, lines[0].Status)
}

func TestRecordSameLineAccumulatesFrequency(t *testing.T) {
	svc, db := newHeatmapFixture(t)
	user := seedStudent(t, db, "h2@test.local")
	challenge := seedChallenge(t, db, 10)

	results := []model.TestCaseResult{
		{Passed: false, ErrorLine: intPtr(3), Message: "TypeError"},
	}
	attempt := seedAttempt(t, db, user.ID, challenge.ID, results)

	require.NoError(t, svc.Record(attempt, results))

	// 同一 (attempt, line) 再次命中：状态与消息覆盖，频次累加
	overwrite := []model.TestCaseResult{
		{Passed: true, ErrorLine: intPtr(3), Message: "已修复"},
	}
	require.NoError(t, svc.Record(attempt, overwrite))

	lines, err := svc.HeatmapRepo.ListByAttempt(attempt.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Frequency)
	assert.Equal(t, model.HeatmapStatusCorrect, lines[0].Status)
	assert.Equal(t, "已修复", lines[0].Message)
}

func TestRecordFromAttemptRebuildsFromStoredResults(t *testing.T) {
	svc, db := newHeatmapFixture(t)
	user := seedStudent(t, db, "h3@test.local")
	challenge := seedChallenge(t, db, 10)

	results := []model.TestCaseResult{
		{Passed: false, ErrorLine: intPtr(1), Message: "SyntaxError"},
		{Passed: false, ErrorLine: intPtr(4), Message: "NameError"},
	}
	attempt := seedAttempt(t, db, user.ID, challenge.ID, results)

	require.NoError(t, svc.RecordFromAttempt(attempt.ID))

	lines, err := svc.HeatmapRepo.ListByAttempt(attempt.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestRecordFromAttemptUnknownID(t *testing.T) {
	svc, _ := newHeatmapFixture(t)
	err := svc.RecordFromAttempt(12345)
	require.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestDataGroupsByLine(t *testing.T) {
	svc, db := newHeatmapFixture(t)
	user := seedStudent(t, db, "h4@test.local")
	challenge := seedChallenge(t, db, 10)

	first := seedAttempt(t, db, user.ID, challenge.ID, nil)
	second := seedAttempt(t, db, user.ID, challenge.ID, nil)

	require.NoError(t, svc.Record(first, []model.TestCaseResult{
		{Passed: false, ErrorLine: intPtr(2), Message: "a"},
	}))
	require.NoError(t, svc.Record(second, []model.TestCaseResult{
		{Passed: false, ErrorLine: intPtr(2), Message: "b"},
		{Passed: false, ErrorLine: intPtr(7), Message: "c"},
	}))

	data, err := svc.Data(challenge.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, data[2], 2, "两次提交都挂在第2行")
	assert.Len(t, data[7], 1)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/bootcamp-tracker/models"
)

func TestLoginOrCreate(t *testing.T) {
	db := newTestDB(t)
	dir := NewUserDirectory(db, nil)
	ctx := context.Background()

	created, err := dir.LoginOrCreate(ctx, "Alice", models.GenderFemale)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 0, created.TotalPoints)
	assert.False(t, created.CreatedAt.IsZero())

	again, err := dir.LoginOrCreate(ctx, "Alice", models.GenderMale)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, models.GenderFemale, again.Gender)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoginOrCreateValidation(t *testing.T) {
	dir := NewUserDirectory(newTestDB(t), nil)
	ctx := context.Background()

	_, err := dir.LoginOrCreate(ctx, "  ", models.GenderMale)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = dir.LoginOrCreate(ctx, "bob", "Other")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateGender(t *testing.T) {
	db := newTestDB(t)
	dir := NewUserDirectory(db, nil)
	ctx := context.Background()
	u := mustUser(t, db, "casey")

	updated, err := dir.UpdateGender(ctx, u.ID, models.GenderMale)
	require.NoError(t, err)
	assert.Equal(t, models.GenderMale, updated.Gender)

	reloaded, err := dir.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GenderMale, reloaded.Gender)

	_, err = dir.UpdateGender(ctx, u.ID, "unknown")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = dir.UpdateGender(ctx, u.ID+50, models.GenderFemale)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersByRank(t *testing.T) {
	db := newTestDB(t)
	dir := NewUserDirectory(db, nil)
	ledger := newTestLedger(t, db, testToday)
	ctx := context.Background()

	low := mustUser(t, db, "Low")
	high, err := dir.LoginOrCreate(ctx, "High", models.GenderMale)
	require.NoError(t, err)
	mid := mustUser(t, db, "Middle")

	for i := 0; i < 3; i++ {
		_, err := ledger.CreateSubmission(ctx, NewSubmission{UserID: high.ID, Type: models.SubmissionContent})
		require.NoError(t, err)
	}
	_, err = ledger.CreateSubmission(ctx, NewSubmission{UserID: mid.ID, Type: models.SubmissionContent})
	require.NoError(t, err)

	ranked, err := dir.ListUsersByRank(ctx, 0, 100, UserFilter{})
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, []uint{high.ID, mid.ID, low.ID}, []uint{ranked[0].ID, ranked[1].ID, ranked[2].ID})
	assert.Equal(t, 15, ranked[0].TotalPoints)

	top, err := dir.ListUsersByRank(ctx, 0, 2, UserFilter{})
	require.NoError(t, err)
	assert.Len(t, top, 2)

	rest, err := dir.ListUsersByRank(ctx, 2, 10, UserFilter{})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, low.ID, rest[0].ID)

	search, err := dir.ListUsersByRank(ctx, 0, 100, UserFilter{Search: "IG"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	assert.Equal(t, high.ID, search[0].ID)

	women, err := dir.ListUsersByRank(ctx, 0, 100, UserFilter{Gender: models.GenderFemale})
	require.NoError(t, err)
	assert.Len(t, women, 2)
}

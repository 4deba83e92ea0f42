package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/testutil"
)

func TestSubscribeAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	follower := testutil.CreateTestUser(t, db, "follower")
	alice := testutil.CreateTestUser(t, db, "alice")
	bob := testutil.CreateTestUser(t, db, "bob")

	require.NoError(t, svc.Subscribe(context.Background(), follower.ID, alice.ID))
	require.NoError(t, svc.Subscribe(context.Background(), follower.ID, bob.ID))

	authors, count, err := svc.Subscriptions(context.Background(), follower.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Username)
	}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)

	ok, err := svc.IsSubscribed(context.Background(), follower.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	set, err := svc.SubscribedSet(context.Background(), follower.ID, []uuid.UUID{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.True(t, set[alice.ID])
	assert.True(t, set[bob.ID])
}

func TestSubscribeTwiceRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	follower := testutil.CreateTestUser(t, db, "follower")
	alice := testutil.CreateTestUser(t, db, "alice")

	require.NoError(t, svc.Subscribe(context.Background(), follower.ID, alice.ID))
	err := svc.Subscribe(context.Background(), follower.ID, alice.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Where("user_id = ?", follower.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSelfFollowRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db, "narcissist")

	err := svc.Subscribe(context.Background(), user.ID, user.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSelfFollowCheckedBeforeExistence(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)

	// The same unknown id as both sides still reports the self-follow error
	phantom := uuid.New()
	err := svc.Subscribe(context.Background(), phantom, phantom)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	follower := testutil.CreateTestUser(t, db, "follower")

	err := svc.Subscribe(context.Background(), follower.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnsubscribe(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	follower := testutil.CreateTestUser(t, db, "follower")
	alice := testutil.CreateTestUser(t, db, "alice")

	require.NoError(t, svc.Subscribe(context.Background(), follower.ID, alice.ID))
	require.NoError(t, svc.Unsubscribe(context.Background(), follower.ID, alice.ID))

	err := svc.Unsubscribe(context.Background(), follower.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersPaged(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	for _, name := range []string{"u1", "u2", "u3"} {
		testutil.CreateTestUser(t, db, name)
	}

	users, count, err := svc.ListUsers(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Len(t, users, 2)

	users, _, err = svc.ListUsers(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

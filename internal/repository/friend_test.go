package repository

import (
	"context"
	"testing"

	"readrover/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFriendshipBetweenUsersBothOrders(t *testing.T) {
	db := testDB(t)
	repo := NewFriendRepository(db)
	a := createUser(t, db, "a")
	b := createUser(t, db, "b")

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: a.ID,
		AddresseeID: b.ID,
		Status:      models.FriendshipStatusPending,
	}))

	// One row answers the lookup regardless of argument order
	f1, err := repo.GetFriendshipBetweenUsers(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, f1)

	f2, err := repo.GetFriendshipBetweenUsers(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, f2)
	assert.Equal(t, f1.ID, f2.ID)

	// No row between unrelated users
	c := createUser(t, db, "c")
	f3, err := repo.GetFriendshipBetweenUsers(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.Nil(t, f3)
}

func TestGetFriendsIsSymmetric(t *testing.T) {
	db := testDB(t)
	repo := NewFriendRepository(db)
	a := createUser(t, db, "a")
	b := createUser(t, db, "b")
	c := createUser(t, db, "c")

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: a.ID, AddresseeID: b.ID, Status: models.FriendshipStatusAccepted,
	}))
	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: c.ID, AddresseeID: a.ID, Status: models.FriendshipStatusAccepted,
	}))
	// Pending rows are not friends
	d := createUser(t, db, "d")
	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: a.ID, AddresseeID: d.ID, Status: models.FriendshipStatusPending,
	}))

	friends, err := repo.GetFriends(ctx, a.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(friends))
	for _, f := range friends {
		names = append(names, f.Username)
	}
	assert.ElementsMatch(t, []string{"b", "c"}, names)

	ids, err := repo.GetFriendIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, ids)
}

func TestGetPendingRequestsOnlyForAddressee(t *testing.T) {
	db := testDB(t)
	repo := NewFriendRepository(db)
	a := createUser(t, db, "a")
	b := createUser(t, db, "b")

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Friendship{
		RequesterID: a.ID, AddresseeID: b.ID, Status: models.FriendshipStatusPending,
	}))

	pending, err := repo.GetPendingRequests(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// The requester has no incoming request
	pending, err = repo.GetPendingRequests(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUpdateStatus(t *testing.T) {
	db := testDB(t)
	repo := NewFriendRepository(db)
	a := createUser(t, db, "a")
	b := createUser(t, db, "b")

	ctx := context.Background()
	friendship := &models.Friendship{
		RequesterID: a.ID, AddresseeID: b.ID, Status: models.FriendshipStatusPending,
	}
	require.NoError(t, repo.Create(ctx, friendship))
	require.NoError(t, repo.UpdateStatus(ctx, friendship.ID, models.FriendshipStatusAccepted))

	got, err := repo.GetByID(ctx, friendship.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, got.Status)
}

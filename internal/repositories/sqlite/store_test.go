package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"github.com/ArowuTest/luckyticket-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTicketLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tickets := store.Tickets()

	ticket := &models.Ticket{Code: "AB12CD34", Reward: 100}
	require.NoError(t, tickets.Insert(ctx, ticket))
	assert.False(t, ticket.ID.IsZero())

	err := tickets.Insert(ctx, &models.Ticket{Code: "AB12CD34", Reward: 5})
	assert.ErrorIs(t, err, repositories.ErrDuplicateKey)

	found, err := tickets.FindByCode(ctx, "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.ID)
	assert.Equal(t, models.TicketAvailable, found.State)
	assert.Nil(t, found.RedeemedBy)
	assert.Nil(t, found.RedeemedAt)

	userID := primitive.NewObjectID()
	at := time.Date(2026, 5, 1, 9, 30, 0, 123, time.UTC)
	claimed, err := tickets.ClaimAvailable(ctx, "AB12CD34", userID, at)
	require.NoError(t, err)
	assert.Equal(t, models.TicketRedeemed, claimed.State)
	assert.Equal(t, int64(100), claimed.Reward)
	require.NotNil(t, claimed.RedeemedBy)
	assert.Equal(t, userID, *claimed.RedeemedBy)
	require.NotNil(t, claimed.RedeemedAt)
	assert.True(t, at.Equal(*claimed.RedeemedAt))

	_, err = tickets.ClaimAvailable(ctx, "AB12CD34", primitive.NewObjectID(), time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = tickets.ClaimAvailable(ctx, "NOPE0000", userID, time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = tickets.FindByCode(ctx, "NOPE0000")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	history, err := tickets.FindRedeemedBy(ctx, userID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "AB12CD34", history[0].Code)
	assert.True(t, at.Equal(history[0].RedeemedAt))

	available, err := tickets.FindAvailable(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, available)

	n, err := tickets.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTicketPagination(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tickets := store.Tickets()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, code := range []string{"CODE0001", "CODE0002", "CODE0003", "CODE0004", "CODE0005"} {
		require.NoError(t, tickets.Insert(ctx, &models.Ticket{
			Code:      code,
			Reward:    int64(i + 1),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page1, err := tickets.FindAll(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "CODE0005", page1[0].Code)
	assert.Equal(t, "CODE0004", page1[1].Code)

	page3, err := tickets.FindAll(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "CODE0001", page3[0].Code)

	available, err := tickets.FindAvailable(ctx, 2, 3)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "CODE0002", available[0].Code)
}

func TestUserPoints(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := store.Users()

	user := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, user))

	err := users.Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash", Role: models.RoleUser})
	assert.ErrorIs(t, err, repositories.ErrDuplicateKey)

	balance, err := users.IncrementPoints(ctx, user.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)
	balance, err = users.IncrementPoints(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)

	_, err = users.IncrementPoints(ctx, user.ID, -1)
	assert.Error(t, err)
	_, err = users.IncrementPoints(ctx, primitive.NewObjectID(), 10)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	byEmail, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(42), byEmail.Points)
	assert.Equal(t, "hash", byEmail.Password)

	all, err := users.FindAll(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Password)
}

func TestFileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tickets.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Tickets().Insert(ctx, &models.Ticket{Code: "KEEP0001", Reward: 9}))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Ping(ctx))

	ticket, err := reopened.Tickets().FindByCode(ctx, "KEEP0001")
	require.NoError(t, err)
	assert.Equal(t, int64(9), ticket.Reward)
}

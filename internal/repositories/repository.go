package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no record matches a lookup or a conditional update.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when an insert violates a unique index (ticket code, user email).
	ErrDuplicateKey = errors.New("duplicate key")
)

// TicketRepository is the ledger of lucky tickets.
type TicketRepository interface {
	// Insert stores a new ticket. A code collision yields ErrDuplicateKey.
	Insert(ctx context.Context, ticket *models.Ticket) error
	// ClaimAvailable marks the ticket with the given code as redeemed by userID, but only if it
	// is still available, in a single atomic write. It returns the updated ticket, or
	// ErrNotFound if no available ticket matched.
	ClaimAvailable(ctx context.Context, code string, userID primitive.ObjectID, at time.Time) (*models.Ticket, error)
	FindByCode(ctx context.Context, code string) (*models.Ticket, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Ticket, error)
	FindAvailable(ctx context.Context, page, limit int) ([]*models.AvailableTicket, error)
	FindRedeemedBy(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.RedeemedTicket, error)
	Count(ctx context.Context) (int64, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a user. A taken email yields ErrDuplicateKey.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.User, error)
	// IncrementPoints atomically adds points to the user's balance and returns the new balance.
	IncrementPoints(ctx context.Context, userID primitive.ObjectID, points int64) (int64, error)
}

// Skip converts a 1-based page and a limit into a row offset.
func Skip(page, limit int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * limit)
}

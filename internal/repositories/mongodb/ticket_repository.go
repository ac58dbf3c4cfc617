package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"github.com/ArowuTest/luckyticket-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure TicketRepository implements the interface
var _ repositories.TicketRepository = (*TicketRepository)(nil)

// TicketRepository handles MongoDB operations for lucky tickets
type TicketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{
		collection: db.Collection("tickets"),
	}
}

// Insert stores a new available ticket
func (r *TicketRepository) Insert(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID.IsZero() {
		ticket.ID = primitive.NewObjectID()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	ticket.State = models.TicketAvailable
	ticket.RedeemedBy = nil
	ticket.RedeemedAt = nil

	_, err := r.collection.InsertOne(ctx, ticket)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrDuplicateKey
	}
	return err
}

// ClaimAvailable flips an available ticket to redeemed with a single findOneAndUpdate.
// The state predicate in the filter is what keeps two concurrent claims from both matching.
func (r *TicketRepository) ClaimAvailable(ctx context.Context, code string, userID primitive.ObjectID, at time.Time) (*models.Ticket, error) {
	filter := bson.M{"code": code, "state": models.TicketAvailable}
	update := bson.M{"$set": bson.M{
		"state":      models.TicketRedeemed,
		"redeemedBy": userID,
		"redeemedAt": at,
		"updatedAt":  at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ticket models.Ticket
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindByCode finds a ticket by its code
func (r *TicketRepository) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindAll lists every ticket, newest first
func (r *TicketRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Ticket, error) {
	opts := options.Find().
		SetSkip(repositories.Skip(page, limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []*models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// FindAvailable lists unredeemed tickets with only their code projected
func (r *TicketRepository) FindAvailable(ctx context.Context, page, limit int) ([]*models.AvailableTicket, error) {
	opts := options.Find().
		SetProjection(bson.M{"code": 1}).
		SetSkip(repositories.Skip(page, limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"state": models.TicketAvailable}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []*models.AvailableTicket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// FindRedeemedBy lists the tickets a user has redeemed, latest redemption first
func (r *TicketRepository) FindRedeemedBy(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.RedeemedTicket, error) {
	opts := options.Find().
		SetProjection(bson.M{"code": 1, "reward": 1, "redeemedAt": 1}).
		SetSkip(repositories.Skip(page, limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "redeemedAt", Value: -1}})

	filter := bson.M{"redeemedBy": userID, "state": models.TicketRedeemed}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []*models.RedeemedTicket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// Count counts all tickets
func (r *TicketRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

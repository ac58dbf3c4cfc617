package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"github.com/ArowuTest/luckyticket-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.TicketRepository = (*TicketRepository)(nil)

const ticketColumns = `id, code, reward, state, redeemed_by, redeemed_at, created_at, updated_at`

// TicketRepository handles SQLite operations for lucky tickets.
type TicketRepository struct {
	db *sql.DB
}

// Insert stores a new available ticket.
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

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (id, code, reward, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		ticket.ID.Hex(), ticket.Code, ticket.Reward, string(ticket.State),
		formatTime(ticket.CreatedAt), formatTime(ticket.UpdatedAt),
	)
	return translateError(err)
}

// ClaimAvailable flips an available ticket to redeemed in one conditional UPDATE.
func (r *TicketRepository) ClaimAvailable(ctx context.Context, code string, userID primitive.ObjectID, at time.Time) (*models.Ticket, error) {
	stamp := formatTime(at)
	row := r.db.QueryRowContext(ctx,
		`UPDATE tickets
		    SET state = 'REDEEMED', redeemed_by = ?, redeemed_at = ?, updated_at = ?
		  WHERE code = ? AND state = 'AVAILABLE'
		RETURNING `+ticketColumns,
		userID.Hex(), stamp, stamp, code,
	)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, translateError(err)
	}
	return ticket, nil
}

// FindByCode finds a ticket by its code.
func (r *TicketRepository) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE code = ?`, code)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, translateError(err)
	}
	return ticket, nil
}

// FindAll lists every ticket, newest first.
func (r *TicketRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, repositories.Skip(page, limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []*models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// FindAvailable lists unredeemed tickets without their reward.
func (r *TicketRepository) FindAvailable(ctx context.Context, page, limit int) ([]*models.AvailableTicket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code FROM tickets WHERE state = 'AVAILABLE'
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, repositories.Skip(page, limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []*models.AvailableTicket{}
	for rows.Next() {
		var id string
		ticket := &models.AvailableTicket{}
		if err := rows.Scan(&id, &ticket.Code); err != nil {
			return nil, err
		}
		if ticket.ID, err = primitive.ObjectIDFromHex(id); err != nil {
			return nil, fmt.Errorf("ticket id %q: %w", id, err)
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// FindRedeemedBy lists the tickets a user has redeemed, latest redemption first.
func (r *TicketRepository) FindRedeemedBy(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.RedeemedTicket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, reward, redeemed_at FROM tickets
		  WHERE redeemed_by = ? AND state = 'REDEEMED'
		  ORDER BY redeemed_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID.Hex(), limit, repositories.Skip(page, limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []*models.RedeemedTicket{}
	for rows.Next() {
		var id, redeemedAt string
		ticket := &models.RedeemedTicket{}
		if err := rows.Scan(&id, &ticket.Code, &ticket.Reward, &redeemedAt); err != nil {
			return nil, err
		}
		if ticket.ID, err = primitive.ObjectIDFromHex(id); err != nil {
			return nil, fmt.Errorf("ticket id %q: %w", id, err)
		}
		if ticket.RedeemedAt, err = parseTime(redeemedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// Count counts all tickets.
func (r *TicketRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTicket(s scanner) (*models.Ticket, error) {
	var (
		id, state, createdAt, updatedAt string
		redeemedBy, redeemedAt          sql.NullString
		ticket                          models.Ticket
	)
	if err := s.Scan(&id, &ticket.Code, &ticket.Reward, &state, &redeemedBy, &redeemedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if ticket.ID, err = primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("ticket id %q: %w", id, err)
	}
	ticket.State = models.TicketState(state)
	if redeemedBy.Valid {
		by, err := primitive.ObjectIDFromHex(redeemedBy.String)
		if err != nil {
			return nil, fmt.Errorf("redeemed_by %q: %w", redeemedBy.String, err)
		}
		ticket.RedeemedBy = &by
	}
	if redeemedAt.Valid {
		at, err := parseTime(redeemedAt.String)
		if err != nil {
			return nil, err
		}
		ticket.RedeemedAt = &at
	}
	if ticket.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if ticket.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &ticket, nil
}

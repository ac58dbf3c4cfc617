package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"github.com/ArowuTest/luckyticket-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.UserRepository = (*UserRepository)(nil)

const userColumns = `id, name, email, password, role, points, created_at, updated_at`

// UserRepository handles SQLite operations for users.
type UserRepository struct {
	db *sql.DB
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID.Hex(), user.Name, user.Email, user.Password, user.Role, user.Points,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	return translateError(err)
}

// FindByEmail finds a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.Hex())
	user, err := scanUser(row)
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// FindAll retrieves users, newest first. Password hashes are not loaded.
func (r *UserRepository) FindAll(ctx context.Context, page, limit int) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, repositories.Skip(page, limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		user.Password = ""
		users = append(users, user)
	}
	return users, rows.Err()
}

// IncrementPoints atomically adds points and returns the new balance.
func (r *UserRepository) IncrementPoints(ctx context.Context, userID primitive.ObjectID, pointsToAdd int64) (int64, error) {
	if pointsToAdd <= 0 {
		return 0, errors.New("points to add must be positive")
	}
	var points int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET points = points + ?, updated_at = ? WHERE id = ? RETURNING points`,
		pointsToAdd, formatTime(time.Now()), userID.Hex(),
	).Scan(&points)
	if err != nil {
		return 0, translateError(err)
	}
	return points, nil
}

func scanUser(s scanner) (*models.User, error) {
	var (
		id, createdAt, updatedAt string
		user                     models.User
	)
	if err := s.Scan(&id, &user.Name, &user.Email, &user.Password, &user.Role, &user.Points, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if user.ID, err = primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("user id %q: %w", id, err)
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"github.com/ArowuTest/luckyticket-backend/internal/repositories"
	"github.com/ArowuTest/luckyticket-backend/pkg/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]*models.User, error)
	// SeedAdmin creates the admin account unless a user with that email exists.
	// The boolean reports whether a user was created.
	SeedAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error)
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   *jwt.TokenService
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(userRepo repositories.UserRepository, tokens *jwt.TokenService, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register handles user registration
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	user, err := s.create(ctx, req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.Hex())
	return s.respond(user)
}

// Login handles user login
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.respond(user)
}

// Me returns the authenticated user
func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.Password = ""
	return user, nil
}

// ListUsers lists accounts for the admin dashboard
func (s *authService) ListUsers(ctx context.Context, page, limit int) ([]*models.User, error) {
	page, limit = NormalizePage(page, limit)
	return s.userRepo.FindAll(ctx, page, limit)
}

// SeedAdmin creates the admin account if it does not exist yet
func (s *authService) SeedAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	existing, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		existing.Password = ""
		return existing, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, fmt.Errorf("find admin: %w", err)
	}
	if password == "" {
		return nil, false, fmt.Errorf("%w: admin password is required", ErrInvalidInput)
	}

	user, err := s.create(ctx, name, email, password, models.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		// Seeded concurrently by another process.
		existing, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
		if err != nil {
			return nil, false, fmt.Errorf("find admin: %w", err)
		}
		existing.Password = ""
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *authService) create(ctx context.Context, name, email, password, role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Password = ""
	return user, nil
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &models.AuthResponse{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

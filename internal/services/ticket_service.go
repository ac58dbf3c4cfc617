package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArowuTest/luckyticket-backend/internal/config"
	"github.com/ArowuTest/luckyticket-backend/internal/logging"
	"github.com/ArowuTest/luckyticket-backend/internal/metrics"
	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"github.com/ArowuTest/luckyticket-backend/internal/repositories"
	"github.com/ArowuTest/luckyticket-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500

	batchParallelism = 8
)

// TicketService mints, redeems and lists lucky tickets.
type TicketService struct {
	tickets repositories.TicketRepository
	users   repositories.UserRepository
	metrics *metrics.Metrics
	logger  *slog.Logger

	codeLength    int
	maxAttempts   int
	maxBatchSize  int
	creditTimeout time.Duration

	generateCode func(length int) (string, error)
	now          func() time.Time
}

// TicketOption customises a TicketService
type TicketOption func(*TicketService)

// WithMetrics records generation and redemption outcomes
func WithMetrics(m *metrics.Metrics) TicketOption {
	return func(s *TicketService) { s.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) TicketOption {
	return func(s *TicketService) { s.logger = l }
}

// WithCodeGenerator replaces the random code generator
func WithCodeGenerator(gen func(length int) (string, error)) TicketOption {
	return func(s *TicketService) { s.generateCode = gen }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) TicketOption {
	return func(s *TicketService) { s.now = now }
}

// NewTicketService creates a new TicketService
func NewTicketService(tickets repositories.TicketRepository, users repositories.UserRepository, cfg config.TicketsConfig, opts ...TicketOption) *TicketService {
	s := &TicketService{
		tickets:       tickets,
		users:         users,
		logger:        logging.Discard(),
		codeLength:    cfg.CodeLength,
		maxAttempts:   cfg.MaxGenerateAttempts,
		maxBatchSize:  cfg.MaxBatchSize,
		creditTimeout: cfg.CreditTimeout,
		generateCode:  utils.GenerateCode,
		now:           time.Now,
	}
	if s.codeLength <= 0 {
		s.codeLength = utils.DefaultCodeLength
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 1
	}
	if s.maxBatchSize <= 0 {
		s.maxBatchSize = 1
	}
	if s.creditTimeout <= 0 {
		s.creditTimeout = 5 * time.Second
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate mints one ticket worth reward points. reward is a decoded JSON value.
func (s *TicketService) Generate(ctx context.Context, reward interface{}) (*models.Ticket, error) {
	points, err := utils.ParseReward(reward)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.mint(ctx, points)
}

// GenerateBatch mints count tickets of the same reward. On failure the tickets already
// inserted are returned alongside the error; they are valid, redeemable tickets.
func (s *TicketService) GenerateBatch(ctx context.Context, reward interface{}, count int) ([]*models.Ticket, error) {
	points, err := utils.ParseReward(reward)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if count < 1 || count > s.maxBatchSize {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidInput, s.maxBatchSize)
	}

	minted := make([]*models.Ticket, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallelism)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			ticket, err := s.mint(gctx, points)
			if err != nil {
				return err
			}
			minted[i] = ticket
			return nil
		})
	}
	err = g.Wait()

	tickets := make([]*models.Ticket, 0, count)
	for _, t := range minted {
		if t != nil {
			tickets = append(tickets, t)
		}
	}
	return tickets, err
}

// Import inserts a ticket with a caller supplied code, e.g. pre-printed scratch cards.
func (s *TicketService) Import(ctx context.Context, code string, reward interface{}) (*models.Ticket, error) {
	normalized, err := utils.NormalizeCode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	points, err := utils.ParseReward(reward)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ticket := &models.Ticket{Code: normalized, Reward: points, CreatedAt: s.now()}
	if err := s.tickets.Insert(ctx, ticket); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s already exists", ErrDuplicateCode, normalized)
		}
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
	s.metrics.TicketGenerated()
	return ticket, nil
}

// mint inserts a ticket under a freshly generated code, regenerating on collision.
func (s *TicketService) mint(ctx context.Context, points int64) (*models.Ticket, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.generateCode(s.codeLength)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		ticket := &models.Ticket{Code: code, Reward: points, CreatedAt: s.now()}
		err = s.tickets.Insert(ctx, ticket)
		if err == nil {
			s.metrics.TicketGenerated()
			s.logger.DebugContext(ctx, "ticket generated", "code", ticket.Code, "reward", ticket.Reward)
			return ticket, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("insert ticket: %w", err)
		}
		s.metrics.CodeCollision()
		s.logger.WarnContext(ctx, "ticket code collision, regenerating", "attempt", attempt)
	}
	return nil, ErrDuplicateCode
}

// Redeem claims the ticket with the given code for userID and credits its reward.
//
// The claim is a single conditional write against the ledger; of any number of concurrent
// calls for one code exactly one gets past it. If the credit then fails the ticket stays
// redeemed and a *CreditFailedError is returned for manual reconciliation.
func (s *TicketService) Redeem(ctx context.Context, code string, userID primitive.ObjectID) (result *models.RedemptionResult, err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRedemption(redemptionOutcome(err), time.Since(start))
	}()

	normalized, err := utils.NormalizeCode(code)
	if errors.Is(err, utils.ErrInvalidCode) {
		// No ticket can carry such a code.
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ticket, err := s.tickets.ClaimAvailable(ctx, normalized, userID, s.now())
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, s.explainMissedClaim(ctx, normalized)
	}
	if err != nil {
		return nil, fmt.Errorf("claim ticket: %w", err)
	}

	// The claim has committed. Finish the credit even if the caller goes away.
	creditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.creditTimeout)
	defer cancel()

	balance, err := s.users.IncrementPoints(creditCtx, userID, ticket.Reward)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			err = ErrAccountNotFound
		}
		creditErr := &CreditFailedError{
			Code:      ticket.Code,
			TicketID:  ticket.ID,
			AccountID: userID,
			Reward:    ticket.Reward,
			Err:       err,
		}
		s.logger.ErrorContext(ctx, "ticket claimed but credit failed, reconcile manually",
			"code", ticket.Code,
			"ticket_id", ticket.ID.Hex(),
			"user_id", userID.Hex(),
			"reward", ticket.Reward,
			"error", err,
		)
		return nil, creditErr
	}

	s.logger.InfoContext(ctx, "ticket redeemed",
		"code", ticket.Code, "user_id", userID.Hex(), "reward", ticket.Reward, "balance", balance)
	return &models.RedemptionResult{Ticket: ticket, UserPoints: balance}, nil
}

// explainMissedClaim tells an already redeemed code apart from one that never existed.
func (s *TicketService) explainMissedClaim(ctx context.Context, code string) error {
	existing, err := s.tickets.FindByCode(ctx, code)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("look up ticket: %w", err)
	}
	if existing.IsRedeemed() {
		return ErrAlreadyRedeemed
	}
	// Inserted after the claim ran; it did not exist when the claim was evaluated.
	return ErrCodeNotFound
}

func redemptionOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeRedeemed
	case errors.Is(err, ErrAlreadyRedeemed):
		return metrics.OutcomeAlreadyRedeemed
	case errors.Is(err, ErrCodeNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrCreditFailed):
		return metrics.OutcomeCreditFailed
	default:
		return metrics.OutcomeError
	}
}

// ListTickets returns every ticket, newest first (admin view)
func (s *TicketService) ListTickets(ctx context.Context, page, limit int) ([]*models.Ticket, error) {
	page, limit = NormalizePage(page, limit)
	return s.tickets.FindAll(ctx, page, limit)
}

// ListAvailable returns unredeemed tickets without their reward
func (s *TicketService) ListAvailable(ctx context.Context, page, limit int) ([]*models.AvailableTicket, error) {
	page, limit = NormalizePage(page, limit)
	return s.tickets.FindAvailable(ctx, page, limit)
}

// ListRedeemedBy returns the redemption history of a user
func (s *TicketService) ListRedeemedBy(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.RedeemedTicket, error) {
	page, limit = NormalizePage(page, limit)
	return s.tickets.FindRedeemedBy(ctx, userID, page, limit)
}

// CountTickets returns the number of tickets ever minted
func (s *TicketService) CountTickets(ctx context.Context) (int64, error) {
	return s.tickets.Count(ctx)
}

// NormalizePage clamps pagination parameters.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

package services

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidInput covers a malformed reward amount or an empty/malformed code.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCodeNotFound is returned when no ticket with the code was ever created.
	ErrCodeNotFound = errors.New("invalid ticket code")
	// ErrAlreadyRedeemed is returned when the ticket exists but has been claimed.
	ErrAlreadyRedeemed = errors.New("this ticket has already been redeemed")
	// ErrDuplicateCode is returned when every generation attempt collided with an existing code.
	ErrDuplicateCode = errors.New("could not generate a unique ticket code")
	// ErrAccountNotFound is returned when the credited account no longer exists.
	ErrAccountNotFound = errors.New("account not found")
	// ErrCreditFailed matches every *CreditFailedError.
	ErrCreditFailed = errors.New("ticket claimed but points were not credited")

	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// CreditFailedError reports a redemption whose claim committed but whose credit did not.
// The ticket stays REDEEMED; the fields identify what an operator has to reconcile.
type CreditFailedError struct {
	Code      string
	TicketID  primitive.ObjectID
	AccountID primitive.ObjectID
	Reward    int64
	Err       error
}

func (e *CreditFailedError) Error() string {
	return fmt.Sprintf("ticket %s claimed by %s but crediting %d points failed: %v",
		e.Code, e.AccountID.Hex(), e.Reward, e.Err)
}

func (e *CreditFailedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCreditFailed) true for any CreditFailedError.
func (e *CreditFailedError) Is(target error) bool {
	return target == ErrCreditFailed
}

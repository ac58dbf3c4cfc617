package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketState is the lifecycle state of a lucky ticket.
type TicketState string

const (
	TicketAvailable TicketState = "AVAILABLE"
	TicketRedeemed  TicketState = "REDEEMED"
)

// Ticket is a single-use reward code. It moves from AVAILABLE to REDEEMED exactly once;
// RedeemedBy and RedeemedAt are set in the same write as the state change.
// The JSON names (_id, usedBy, usedAt, isUsed) are the ones the web client reads.
type Ticket struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"_id,omitempty"`
	Code       string              `bson:"code" json:"code"`
	Reward     int64               `bson:"reward" json:"reward"`
	State      TicketState         `bson:"state" json:"state"`
	RedeemedBy *primitive.ObjectID `bson:"redeemedBy" json:"usedBy"`
	RedeemedAt *time.Time          `bson:"redeemedAt" json:"usedAt"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsRedeemed reports whether the ticket has been claimed.
func (t *Ticket) IsRedeemed() bool {
	return t.State == TicketRedeemed
}

// MarshalJSON adds the derived isUsed flag next to state.
func (t Ticket) MarshalJSON() ([]byte, error) {
	type ticket Ticket
	return json.Marshal(struct {
		ticket
		IsUsed bool `json:"isUsed"`
	}{ticket: ticket(t), IsUsed: t.IsRedeemed()})
}

// AvailableTicket is the public view of an unredeemed ticket. The reward stays hidden.
type AvailableTicket struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Code string             `bson:"code" json:"code"`
}

// RedeemedTicket is a row of a user's redemption history.
type RedeemedTicket struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Code       string             `bson:"code" json:"code"`
	Reward     int64              `bson:"reward" json:"reward"`
	RedeemedAt time.Time          `bson:"redeemedAt" json:"usedAt"`
}

// RedemptionResult is returned by a successful redemption.
type RedemptionResult struct {
	Ticket     *Ticket `json:"ticket"`
	UserPoints int64   `json:"userPoints"`
}

// GenerateTicketRequest is the body of POST /luckyticket/generate.
// Reward is kept raw so that numeric strings and bad types reach validation instead of binding.
type GenerateTicketRequest struct {
	Reward interface{} `json:"reward"`
}

// RedeemTicketRequest is the body of POST /luckyticket/redeem.
type RedeemTicketRequest struct {
	Code string `json:"code"`
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTicketJSON(t *testing.T) {
	by := primitive.NewObjectID()
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	ticket := &Ticket{ID: primitive.NewObjectID(), Code: "AB12CD34", Reward: 100, State: TicketRedeemed, RedeemedBy: &by, RedeemedAt: &at}

	raw, err := json.Marshal(ticket)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, ticket.ID.Hex(), body["_id"])
	assert.Equal(t, true, body["isUsed"])
	assert.Equal(t, "REDEEMED", body["state"])
	assert.Equal(t, by.Hex(), body["usedBy"])
	assert.Equal(t, "2026-02-03T04:05:06Z", body["usedAt"])
	assert.NotContains(t, body, "redeemedBy")

	raw, err = json.Marshal(Ticket{Code: "FRESH001", Reward: 5, State: TicketAvailable})
	require.NoError(t, err)
	body = nil
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, false, body["isUsed"])
	assert.Nil(t, body["usedBy"])
	assert.Nil(t, body["usedAt"])
}

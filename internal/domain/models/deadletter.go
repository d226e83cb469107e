package models

import (
	"time"

	"github.com/google/uuid"
)

// DeadLetter is a message recorded as permanently undeliverable after
// exhausting its retry budget. It is never retried automatically.
type DeadLetter struct {
	UUID             uuid.UUID `db:"uuid" json:"uuid"`
	SubscriptionUUID uuid.UUID `db:"subscription_uuid" json:"subscription_uuid"`
	Channel          Channel   `db:"channel" json:"channel"`
	Endpoint         string    `db:"endpoint" json:"-"`
	Title            string    `db:"title" json:"title"`
	Body             string    `db:"body" json:"body"`
	IdempotencyKey   string    `db:"idempotency_key" json:"idempotency_key"`
	Reason           string    `db:"reason" json:"reason"`
	Attempts         int       `db:"attempts" json:"attempts"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

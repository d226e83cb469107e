package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NotificationMessage is one push message bound for one subscription.
type NotificationMessage struct {
	SubscriptionUUID uuid.UUID
	Channel          Channel
	Endpoint         string
	Title            string
	Body             string

	// IdempotencyKey identifies the (event, subscription) pair so a
	// re-diffed cycle cannot dispatch the same message twice.
	IdempotencyKey string
}

// IdempotencyKey derives the dedup key for an event delivered to one subscription.
func IdempotencyKey(e ChangeEvent, subscriptionUUID uuid.UUID) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s|%s", e.OrderID, e.Type, e.NewValue(), subscriptionUUID)))
	return hex.EncodeToString(sum[:])
}

package models

import "strconv"

type EventType string

const (
	ItemCreated       EventType = "ITEM_CREATED"
	ItemRemoved       EventType = "ITEM_REMOVED"
	PriceChanged      EventType = "PRICE_CHANGED"
	SoldStatusChanged EventType = "SOLD_STATUS_CHANGED"
	StattrakChanged   EventType = "STATTRAK_CHANGED"
)

// ChangeEvent is one typed difference between two consecutive snapshots.
// Events are ephemeral: produced by a diff pass, consumed by the router,
// never persisted.
type ChangeEvent struct {
	Type    EventType
	OrderID int

	// Item is the new state for ItemCreated and field changes,
	// and the last known state for ItemRemoved.
	Item Item

	// OldPrice and NewPrice are set for PriceChanged only.
	OldPrice int
	NewPrice int

	// NewFlag is set for SoldStatusChanged and StattrakChanged.
	NewFlag bool
}

// NewValue renders the value the event transitions to, for idempotency keys.
func (e ChangeEvent) NewValue() string {
	switch e.Type {
	case PriceChanged:
		return strconv.Itoa(e.NewPrice)
	case SoldStatusChanged, StattrakChanged:
		return strconv.FormatBool(e.NewFlag)
	default:
		return ""
	}
}

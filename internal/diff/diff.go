// Package diff computes change events between two consecutive snapshots.
package diff

import (
	"sort"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
)

// Diff joins the previous and new snapshots on order id and emits one typed
// event per difference, ordered ascending by order id so the output is
// deterministic. A key only in the new snapshot is a created item, a key only
// in the previous one is a removed item, and a key in both is compared field
// by field, so one item can emit several events in one pass.
//
// Diff is a pure function of its two snapshots: the bootstrap rule (the very
// first run persists a baseline and emits nothing) is decided by the poll
// service, which knows whether a baseline was ever committed. An empty but
// committed baseline is a real previous state, and everything in the new
// snapshot is a created item.
//
// Exterior differences carry no event kind of their own; the snapshot replace
// still persists them, so state converges without a notification.
func Diff(prev, next models.Snapshot) []models.ChangeEvent {
	orderIDs := make([]int, 0, len(prev)+len(next))
	for id := range next {
		orderIDs = append(orderIDs, id)
	}
	for id := range prev {
		if _, ok := next[id]; !ok {
			orderIDs = append(orderIDs, id)
		}
	}
	sort.Ints(orderIDs)

	var events []models.ChangeEvent
	for _, id := range orderIDs {
		oldItem, inPrev := prev[id]
		newItem, inNext := next[id]

		switch {
		case inNext && !inPrev:
			events = append(events, models.ChangeEvent{
				Type:    models.ItemCreated,
				OrderID: id,
				Item:    newItem,
			})
		case inPrev && !inNext:
			events = append(events, models.ChangeEvent{
				Type:    models.ItemRemoved,
				OrderID: id,
				Item:    oldItem,
			})
		default:
			events = append(events, compare(oldItem, newItem)...)
		}
	}

	return events
}

func compare(oldItem, newItem models.Item) []models.ChangeEvent {
	var events []models.ChangeEvent

	if oldItem.Price != newItem.Price {
		events = append(events, models.ChangeEvent{
			Type:     models.PriceChanged,
			OrderID:  newItem.OrderID,
			Item:     newItem,
			OldPrice: oldItem.Price,
			NewPrice: newItem.Price,
		})
	}
	if oldItem.HasSold != newItem.HasSold {
		events = append(events, models.ChangeEvent{
			Type:    models.SoldStatusChanged,
			OrderID: newItem.OrderID,
			Item:    newItem,
			NewFlag: newItem.HasSold,
		})
	}
	if oldItem.IsStattrak != newItem.IsStattrak {
		events = append(events, models.ChangeEvent{
			Type:    models.StattrakChanged,
			OrderID: newItem.OrderID,
			Item:    newItem,
			NewFlag: newItem.IsStattrak,
		})
	}

	return events
}

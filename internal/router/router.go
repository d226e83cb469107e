// Package router turns change events into channel-specific notification
// messages for every subscription whose filter matches.
package router

import (
	"fmt"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type dedupCache interface {
	Seen(key string) bool
	Remember(key string)
}

type Router struct {
	log   logger.Logger
	dedup dedupCache
}

func New(log logger.Logger, dedup dedupCache) *Router {
	return &Router{log: log, dedup: dedup}
}

// Route evaluates every event against every subscription. A filter mismatch
// is a normal, silent outcome. A message whose idempotency key was already
// emitted within the dedup TTL is dropped, which keeps a re-diffed cycle
// after a crash from dispatching the same message twice.
func (r *Router) Route(events []models.ChangeEvent, subs []models.Subscription) []models.NotificationMessage {
	var messages []models.NotificationMessage

	for _, event := range events {
		title, body := render(event)

		for _, sub := range subs {
			if !sub.Filter.Matches(event.Item) {
				continue
			}

			key := models.IdempotencyKey(event, sub.UUID)
			if r.dedup.Seen(key) {
				r.log.Debug("duplicate message suppressed",
					logger.Int("order_id", event.OrderID),
					logger.String("event", string(event.Type)),
					logger.String("subscription", sub.UUID.String()),
				)
				continue
			}
			r.dedup.Remember(key)

			messages = append(messages, models.NotificationMessage{
				SubscriptionUUID: sub.UUID,
				Channel:          sub.Channel,
				Endpoint:         sub.Endpoint,
				Title:            title,
				Body:             body,
				IdempotencyKey:   key,
			})
		}
	}

	return messages
}

func render(event models.ChangeEvent) (title, body string) {
	switch event.Type {
	case models.ItemCreated:
		title = fmt.Sprintf("%s が新たに追加されました", event.Item)
		body = fmt.Sprintf("販売価格: %d円", event.Item.Price)
	case models.ItemRemoved:
		title = fmt.Sprintf("%s が削除されました", event.Item)
	case models.PriceChanged:
		title = fmt.Sprintf("%s の価格が変更されました", event.Item)
		body = fmt.Sprintf("%d 円から %d 円になりました。", event.OldPrice, event.NewPrice)
	case models.SoldStatusChanged:
		if event.NewFlag {
			title = fmt.Sprintf("%s が売約済みになりました", event.Item)
		} else {
			title = fmt.Sprintf("%s が販売中に戻りました", event.Item)
		}
	case models.StattrakChanged:
		title = fmt.Sprintf("%s の StatTrak 表記が変更されました", event.Item)
	}
	return title, body
}

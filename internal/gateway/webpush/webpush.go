// Package webpush sends browser push notifications. The endpoint argument is
// a serialized Web Push subscription (push service URL plus client keys) as
// produced by PushManager.subscribe on the browser side.
package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	wp "github.com/SherClockHolmes/webpush-go"

	"github.com/tomocrafter/takya-notifier/internal/dispatcher"
)

type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

type Gateway struct {
	cfg Config
}

func New(cfg Config) *Gateway {
	return &Gateway{cfg: cfg}
}

func (g *Gateway) Send(ctx context.Context, endpoint string, payload dispatcher.Payload) error {
	const op = "gateway.webpush.Send"

	var sub wp.Subscription
	if err := json.Unmarshal([]byte(endpoint), &sub); err != nil {
		return fmt.Errorf("%s: decode subscription: %w", op, err)
	}

	body, err := json.Marshal(map[string]string{
		"title": payload.Title,
		"body":  payload.Body,
	})
	if err != nil {
		return fmt.Errorf("%s: marshal payload: %w", op, err)
	}

	resp, err := wp.SendNotificationWithContext(ctx, body, &sub, &wp.Options{
		Subscriber:      g.cfg.Subscriber,
		VAPIDPublicKey:  g.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: g.cfg.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("%s: send: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	return nil
}

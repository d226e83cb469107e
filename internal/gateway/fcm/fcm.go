// Package fcm sends mobile push notifications through the FCM legacy HTTP
// endpoint. The endpoint argument is the device registration token.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tomocrafter/takya-notifier/internal/dispatcher"
)

const defaultSendURL = "https://fcm.googleapis.com/fcm/send"

type Gateway struct {
	client    *http.Client
	sendURL   string
	serverKey string
}

func New(serverKey string) *Gateway {
	return &Gateway{
		client:    &http.Client{},
		sendURL:   defaultSendURL,
		serverKey: serverKey,
	}
}

// NewWithURL points the gateway at a non-default send URL. Used in tests.
func NewWithURL(serverKey, sendURL string) *Gateway {
	g := New(serverKey)
	g.sendURL = sendURL
	return g
}

type message struct {
	To           string       `json:"to"`
	Priority     string       `json:"priority"`
	Notification notification `json:"notification"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

func (g *Gateway) Send(ctx context.Context, endpoint string, payload dispatcher.Payload) error {
	const op = "gateway.fcm.Send"

	body, err := json.Marshal(message{
		To:       endpoint,
		Priority: "high",
		Notification: notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: marshal message: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "key="+g.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: send: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var result sendResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&result); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	if result.Failure > 0 {
		return fmt.Errorf("%s: provider reported %d failed registration(s)", op, result.Failure)
	}

	return nil
}

package fcm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomocrafter/takya-notifier/internal/dispatcher"
)

func TestSend(t *testing.T) {
	var got message

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key=server-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(sendResponse{Success: 1})
	}))
	defer server.Close()

	g := NewWithURL("server-key", server.URL)

	err := g.Send(context.Background(), "registration-token", dispatcher.Payload{Title: "t", Body: "b"})
	require.NoError(t, err)

	require.Equal(t, "registration-token", got.To)
	require.Equal(t, "high", got.Priority)
	require.Equal(t, "t", got.Notification.Title)
	require.Equal(t, "b", got.Notification.Body)
}

func TestSendNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	g := NewWithURL("bad-key", server.URL)

	err := g.Send(context.Background(), "registration-token", dispatcher.Payload{Title: "t"})
	require.Error(t, err)
}

func TestSendProviderReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sendResponse{Failure: 1})
	}))
	defer server.Close()

	g := NewWithURL("server-key", server.URL)

	err := g.Send(context.Background(), "stale-token", dispatcher.Payload{Title: "t"})
	require.Error(t, err)
}

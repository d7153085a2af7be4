package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleEvent() Event {
	return Event{
		RecordID:      "shift-1",
		IsValid:       false,
		Reason:        "TOKEN_EXPIRED",
		Message:       "submitted token has expired",
		TimestampType: "check-in",
		OccurredAt:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestLogNotifier_NeverFails(t *testing.T) {
	require.NoError(t, LogNotifier{}.Publish(context.Background(), sampleEvent()))
}

func TestWebhookNotifier_PostsJSON(t *testing.T) {
	var got Event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhook(srv.URL, time.Second)
	require.NoError(t, n.Publish(context.Background(), sampleEvent()))
	require.Equal(t, sampleEvent(), got)
}

func TestWebhookNotifier_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhook(srv.URL, time.Second)
	require.Error(t, n.Publish(context.Background(), sampleEvent()))
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	// Закрытый сервер гарантирует ошибку соединения.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	n := NewWebhook(srv.URL, 200*time.Millisecond)
	require.Error(t, n.Publish(context.Background(), sampleEvent()))
}

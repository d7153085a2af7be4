// Package notify — выходной канал результатов валидации.
// Сервис не персистит результаты: они сразу уходят внешнему диспетчеру
// уведомлений. Ошибки доставки логируются и никогда не влияют на исход
// породившей записи (политика «запись прихода/ухода всегда успешна»).
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/go-shift-scheduler/internal/pkg/log"
)

// Event — результат валидации, адресованный внешнему коллаборатору.
type Event struct {
	RecordID      string    `json:"record_id"`
	IsValid       bool      `json:"is_valid"`
	Reason        string    `json:"reason"`
	Message       string    `json:"message"`
	TimestampType string    `json:"timestamp_type"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier — минимальный контракт доставки результатов.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// LogNotifier пишет результат в структурный лог. Используется, когда
// webhook не сконфигурирован, и как последний рубеж наблюдаемости.
type LogNotifier struct{}

func (LogNotifier) Publish(ctx context.Context, event Event) error {
	logctx.From(ctx).LogAttrs(ctx, slog.LevelInfo, "validation_outcome",
		slog.String("record_id", event.RecordID),
		slog.Bool("is_valid", event.IsValid),
		slog.String("reason", event.Reason),
		slog.String("timestamp_type", event.TimestampType),
	)

	return nil
}

// WebhookNotifier отправляет результат JSON-POST'ом на внешний приёмник.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhook создаёт нотификатор с собственным таймаутом HTTP-клиента.
func NewWebhook(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Publish(ctx context.Context, event Event) error {
	const op = "notify/WebhookNotifier/Publish"

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do: %w", op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: webhook status %d", op, resp.StatusCode)
	}

	return nil
}

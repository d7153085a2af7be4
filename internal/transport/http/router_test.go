package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-shift-scheduler/internal/config"
	"github.com/pribylovaa/go-shift-scheduler/internal/models"
	"github.com/pribylovaa/go-shift-scheduler/internal/service"
	"github.com/pribylovaa/go-shift-scheduler/internal/storage"
	"github.com/pribylovaa/go-shift-scheduler/mocks"
)

// Тесты REST-поверхности: сборка роутера + хэндлеры с мок-хранилищем.
//
// Ключевые свойства:
//   - POST /v1/events/schedule всегда отвечает 202, что бы ни произошло
//     внутри (триггер не должен ретраить/откатывать запись смены);
//   - GET /v1/tokens/current — 200 с токеном либо 404/no_active_token;
//   - POST /v1/tokens/rotate — 202, ротация уходит в цикл issuer'а;
//   - каждый ответ несёт X-Request-Id.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTokenCfg() config.TokenConfig {
	return config.TokenConfig{
		Window:        60 * time.Second,
		Retention:     24 * time.Hour,
		Scheme:        config.SchemeAppendOnly,
		Backend:       config.BackendMongo,
		SlotID:        "current",
		RetryInterval: 5 * time.Second,
	}
}

// newTestRouter собирает полный роутер поверх мок-хранилища.
func newTestRouter(t *testing.T) (http.Handler, *mocks.MockTokenStorage) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	st := mocks.NewMockTokenStorage(ctrl)
	cfg := testTokenCfg()

	svc := service.New(st, cfg)
	issuer := service.NewIssuer(st, cfg)

	return NewRouter(svc, issuer, Options{
		Logger:  discardLogger(),
		Timeout: 5 * time.Second,
	}), st
}

func doJSON(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// scheduleEventBody — валидное тело события: check-in выставлен в newValue.
func scheduleEventBody(t *testing.T, token any, checkIn time.Time) []byte {
	t.Helper()

	raw, err := json.Marshal(map[string]any{
		"record_id": "rec-1",
		"before": map[string]any{
			"check_in_timestamp":  nil,
			"check_out_timestamp": nil,
			"qr_token_used":       nil,
		},
		"after": map[string]any{
			"check_in_timestamp":  checkIn.Format(time.RFC3339Nano),
			"check_out_timestamp": nil,
			"qr_token_used":       token,
		},
	})
	require.NoError(t, err)
	return raw
}

type eventResp struct {
	Triggered bool `json:"triggered"`
	Outcome   *struct {
		IsValid       bool   `json:"is_valid"`
		Reason        string `json:"reason"`
		Message       string `json:"message"`
		TimestampType string `json:"timestamp_type"`
	} `json:"outcome"`
}

func TestScheduleEvent_Valid(t *testing.T) {
	h, st := newTestRouter(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	st.EXPECT().LatestToken(gomock.Any()).Return(&models.Token{
		Value:     "active-token",
		IssuedAt:  now.Add(-10 * time.Second),
		ExpiresAt: now.Add(50 * time.Second),
	}, nil)

	rr := doJSON(t, h, http.MethodPost, "/v1/events/schedule",
		scheduleEventBody(t, "active-token", now))

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	var resp eventResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Triggered)
	require.NotNil(t, resp.Outcome)
	require.True(t, resp.Outcome.IsValid)
	require.Equal(t, string(models.ReasonValid), resp.Outcome.Reason)
	require.Equal(t, string(models.TimestampCheckIn), resp.Outcome.TimestampType)
}

func TestScheduleEvent_Mismatch_Still202(t *testing.T) {
	h, st := newTestRouter(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	st.EXPECT().LatestToken(gomock.Any()).Return(&models.Token{
		Value:     "active-token",
		IssuedAt:  now.Add(-10 * time.Second),
		ExpiresAt: now.Add(50 * time.Second),
	}, nil)

	rr := doJSON(t, h, http.MethodPost, "/v1/events/schedule",
		scheduleEventBody(t, "stale-token", now))

	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp eventResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Triggered)
	require.NotNil(t, resp.Outcome)
	require.False(t, resp.Outcome.IsValid)
	require.Equal(t, string(models.ReasonTokenMismatch), resp.Outcome.Reason)
}

func TestScheduleEvent_NoTrigger(t *testing.T) {
	h, _ := newTestRouter(t)

	// Отметки не менялись — валидации нет, хранилище не вызывается
	// (на моке нет EXPECT, любой вызов завалит тест).
	raw, err := json.Marshal(map[string]any{
		"record_id": "rec-1",
		"before":    map[string]any{"qr_token_used": "x"},
		"after":     map[string]any{"qr_token_used": "y"},
	})
	require.NoError(t, err)

	rr := doJSON(t, h, http.MethodPost, "/v1/events/schedule", raw)

	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp eventResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.Triggered)
	require.Nil(t, resp.Outcome)
}

func TestScheduleEvent_UndecodableBody_Still202(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/events/schedule", []byte("{not json"))

	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp eventResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.Triggered)
	require.Nil(t, resp.Outcome)
}

func TestScheduleEvent_UnknownField_Still202(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/events/schedule",
		[]byte(`{"record_id":"rec-1","unexpected":true}`))

	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp eventResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.Triggered)
}

func TestCurrentToken_OK(t *testing.T) {
	h, st := newTestRouter(t)

	issued := time.Now().UTC().Truncate(time.Millisecond)
	st.EXPECT().LatestToken(gomock.Any()).Return(&models.Token{
		Value:     "display-me",
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Minute),
	}, nil)

	rr := doJSON(t, h, http.MethodGet, "/v1/tokens/current", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp struct {
		Value     string    `json:"value"`
		IssuedAt  time.Time `json:"issued_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "display-me", resp.Value)
	require.True(t, resp.IssuedAt.Equal(issued))
	require.True(t, resp.ExpiresAt.Equal(issued.Add(time.Minute)))
}

func TestCurrentToken_NotFound(t *testing.T) {
	h, st := newTestRouter(t)

	st.EXPECT().LatestToken(gomock.Any()).Return(nil, storage.ErrNoToken)

	rr := doJSON(t, h, http.MethodGet, "/v1/tokens/current", nil)

	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "no_active_token", resp.Error.Code)
	require.NotEmpty(t, resp.Error.RequestID)
}

func TestRotateToken_Accepted(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodPost, "/v1/tokens/rotate", nil)

	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "rotation scheduled", resp["status"])
}

func TestIssuerStatus_Loading(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodGet, "/v1/issuer/status", nil)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		State        string     `json:"state"`
		IssuedAt     *time.Time `json:"issued_at"`
		NextRotation *time.Time `json:"next_rotation"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, string(service.IssuerLoading), resp.State)
	require.Nil(t, resp.IssuedAt)
	require.Nil(t, resp.NextRotation)
}

func TestRequestID_PropagatedFromClient(t *testing.T) {
	h, st := newTestRouter(t)

	st.EXPECT().LatestToken(gomock.Any()).Return(nil, storage.ErrNoToken)

	req := httptest.NewRequest(http.MethodGet, "/v1/tokens/current", nil)
	req.Header.Set("X-Request-Id", "trace-me-123")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "trace-me-123", rr.Header().Get("X-Request-Id"))
}

func TestUnknownRoute_404(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodGet, "/v1/nope", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

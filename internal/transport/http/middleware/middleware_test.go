package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	logctx "github.com/pribylovaa/go-shift-scheduler/internal/pkg/log"
)

// capHandler — тестовый slog.Handler, который:
//   - аккумулирует базовые attrs, приходящие через Logger.With(...);
//   - собирает attrs из каждой записи в map[string]any;
//   - не создаёт реальных I/O, чтобы не паниковать в тестах.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)

	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) > 0 {
		h.base = append(h.base, attrs...)
	}

	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

func TestChain_Order(t *testing.T) {
	order := []string{}

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m1-end")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m2-end")
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	chain := Chain(final, m1, m2)
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_Generate(t *testing.T) {
	var seenID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/gen"))

	require.Len(t, seenID, 32)
	require.Equal(t, seenID, rr.Header().Get("X-Request-Id"))
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	var seenID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	})

	req := makeReq("/keep")
	req.Header.Set("X-Request-Id", "incoming-7")

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, req)

	require.Equal(t, "incoming-7", seenID)
	require.Equal(t, "incoming-7", rr.Header().Get("X-Request-Id"))
}

func TestLogging_FinalRecordAndContextLogger(t *testing.T) {
	cap := &capHandler{}
	logger := slog.New(cap)

	var ctxLoggerSeen bool

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Request-scoped логгер должен лежать в контексте.
		ctxLoggerSeen = logctx.From(r.Context()) != slog.Default()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})

	req := makeReq("/logged")
	req.Header.Set("X-Request-Id", "rid-log")

	rr := httptest.NewRecorder()
	Chain(h, Logging(logger)).ServeHTTP(rr, req)

	require.True(t, ctxLoggerSeen)
	require.Equal(t, 1, cap.count)
	require.Equal(t, "http", cap.lastMsg)
	require.Equal(t, slog.LevelInfo, cap.lastLvl)
	require.Equal(t, "rid-log", cap.attrs["request_id"])
	require.Equal(t, http.MethodGet, cap.attrs["method"])
	require.Equal(t, "/logged", cap.attrs["path"])
	require.EqualValues(t, http.StatusCreated, cap.attrs["status"])
	require.EqualValues(t, 2, cap.attrs["bytes"])
}

func TestRecover_PanicBecomes500(t *testing.T) {
	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	Chain(h, Recover()).ServeHTTP(rr, makeReq("/panic"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "internal", resp.Error.Code)
	// Детали паники не утекают на клиент.
	require.NotContains(t, rr.Body.String(), "boom")
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var hadDeadline bool

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Chain(h, Timeout(time.Second)).ServeHTTP(rr, makeReq("/deadline"))

	require.True(t, hadDeadline)
}

func TestTimeout_RespectsExistingDeadline(t *testing.T) {
	want := time.Now().Add(10 * time.Second)

	var got time.Time

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	})

	req := makeReq("/existing")
	ctx, cancel := context.WithDeadline(req.Context(), want)
	defer cancel()

	rr := httptest.NewRecorder()
	Chain(h, Timeout(time.Second)).ServeHTTP(rr, req.WithContext(ctx))

	require.True(t, got.Equal(want))
}

func TestTimeout_NonPositiveIsNoop(t *testing.T) {
	var hadDeadline bool

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Chain(h, Timeout(0)).ServeHTTP(rr, makeReq("/noop"))

	require.False(t, hadDeadline)
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-shift-scheduler/internal/service"
	"github.com/pribylovaa/go-shift-scheduler/internal/transport/http/handlers"
	"github.com/pribylovaa/go-shift-scheduler/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, issuer *service.Issuer, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, issuer)

	root.Route("/v1", func(r chi.Router) {
		// триггерный вход валидатора
		r.Post("/events/schedule", h.ScheduleEvent)

		// токены
		r.Get("/tokens/current", h.CurrentToken)
		r.Post("/tokens/rotate", h.RotateToken)

		// issuer
		r.Get("/issuer/status", h.IssuerStatus)
	})

	return root
}

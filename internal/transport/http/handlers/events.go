package handlers

import (
	"log/slog"
	"net/http"

	logctx "github.com/pribylovaa/go-shift-scheduler/internal/pkg/log"
)

// ScheduleEvent — триггерный вход валидатора: пара до/после записи смены.
//
// Эндпойнт всегда отвечает 202: исход валидации (включая внутренние сбои)
// не должен заставить источник триггера ретраить или откатывать уже
// закоммиченную запись прихода/ухода. Даже нечитаемое тело — это no-op с
// предупреждением в логе, а не ошибка клиенту.
func (h *Handlers) ScheduleEvent(w http.ResponseWriter, r *http.Request) {
	var in scheduleEventRequest
	if err := decodeStrict(r, &in); err != nil {
		logctx.From(r.Context()).Warn("schedule_event_undecodable",
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusAccepted, scheduleEventResponse{Triggered: false})
		return
	}

	outcome, triggered := h.svc.HandleScheduleEvent(r.Context(), in.toModel())

	writeJSON(w, http.StatusAccepted, scheduleEventResponse{
		Triggered: triggered,
		Outcome:   outcomeFromModel(outcome),
	})
}

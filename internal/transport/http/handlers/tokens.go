package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-shift-scheduler/internal/transport/http/apierr"
)

// CurrentToken — чтение последнего выпущенного токена для табло с QR-кодом.
func (h *Handlers) CurrentToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.svc.CurrentToken(r.Context())
	if err != nil {
		apierr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenFromModel(token))
}

// RotateToken — внеплановая ротация (админ-операция). Запрос уходит в
// единственный таймер-цикл issuer'а, поэтому ответ — 202, а не результат.
func (h *Handlers) RotateToken(w http.ResponseWriter, _ *http.Request) {
	h.issuer.ForceRotate()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "rotation scheduled"})
}

// IssuerStatus — снимок машины состояний issuer'а.
func (h *Handlers) IssuerStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusFromModel(h.issuer.Status()))
}

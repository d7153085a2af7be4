package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/go-shift-scheduler/internal/service"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc    *service.Service
	issuer *service.Issuer
}

func New(svc *service.Service, issuer *service.Issuer) *Handlers {
	return &Handlers{svc: svc, issuer: issuer}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

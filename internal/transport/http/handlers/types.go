// Входные/выходные модели REST-слоя.
package handlers

import (
	"time"

	"github.com/pribylovaa/go-shift-scheduler/internal/models"
	"github.com/pribylovaa/go-shift-scheduler/internal/service"
	"github.com/pribylovaa/go-shift-scheduler/internal/shift"
)

// scheduleRecordDTO — срез записи смены, как его присылает триггерный слой.
// Отметки приходят в разнородных представлениях (RFC3339, unix-время в
// секундах или миллисекундах) — нормализация через shift.ParseClockTime.
// qr_token_used намеренно any: не-строка — это штатный отказ MISSING_TOKEN.
type scheduleRecordDTO struct {
	CheckInTimestamp  any `json:"check_in_timestamp"`
	CheckOutTimestamp any `json:"check_out_timestamp"`
	QRTokenUsed       any `json:"qr_token_used"`
}

// scheduleEventRequest — тело POST /v1/events/schedule.
type scheduleEventRequest struct {
	RecordID string            `json:"record_id"`
	Before   scheduleRecordDTO `json:"before"`
	After    scheduleRecordDTO `json:"after"`
}

// scheduleEventResponse — подтверждение приёма события.
// Triggered=false означает, что изменение не касалось отметок прихода/ухода
// (или тело не удалось разобрать) и валидация не выполнялась.
type scheduleEventResponse struct {
	Triggered bool        `json:"triggered"`
	Outcome   *outcomeDTO `json:"outcome,omitempty"`
}

type outcomeDTO struct {
	IsValid       bool   `json:"is_valid"`
	Reason        string `json:"reason"`
	Message       string `json:"message"`
	TimestampType string `json:"timestamp_type"`
}

type tokenResponse struct {
	Value     string    `json:"value"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type issuerStatusResponse struct {
	State        string     `json:"state"`
	IssuedAt     *time.Time `json:"issued_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	NextRotation *time.Time `json:"next_rotation,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

// toModel нормализует DTO в доменную запись.
func (d scheduleRecordDTO) toModel() models.ScheduleRecord {
	rec := models.ScheduleRecord{QRTokenUsed: d.QRTokenUsed}

	if t, ok := shift.ParseClockTime(d.CheckInTimestamp); ok {
		rec.CheckInAt = &t
	}

	if t, ok := shift.ParseClockTime(d.CheckOutTimestamp); ok {
		rec.CheckOutAt = &t
	}

	return rec
}

func (in scheduleEventRequest) toModel() models.ScheduleEvent {
	return models.ScheduleEvent{
		RecordID: in.RecordID,
		Before:   in.Before.toModel(),
		After:    in.After.toModel(),
	}
}

func outcomeFromModel(o *models.Outcome) *outcomeDTO {
	if o == nil {
		return nil
	}

	return &outcomeDTO{
		IsValid:       o.IsValid,
		Reason:        string(o.Reason),
		Message:       o.Message,
		TimestampType: string(o.TimestampType),
	}
}

func tokenFromModel(t *models.Token) tokenResponse {
	return tokenResponse{
		Value:     t.Value,
		IssuedAt:  t.IssuedAt,
		ExpiresAt: t.ExpiresAt,
	}
}

func statusFromModel(st service.IssuerStatus) issuerStatusResponse {
	out := issuerStatusResponse{
		State:     string(st.State),
		LastError: st.LastError,
	}

	if !st.IssuedAt.IsZero() {
		iat := st.IssuedAt
		out.IssuedAt = &iat
	}

	if !st.ExpiresAt.IsZero() {
		exp := st.ExpiresAt
		out.ExpiresAt = &exp
	}

	if !st.NextRotation.IsZero() {
		next := st.NextRotation
		out.NextRotation = &next
	}

	return out
}

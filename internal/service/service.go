// service содержит бизнес-логику qrtoken-сервиса: валидацию предъявленных
// QR-токенов по триггеру записи смены и чтение текущего токена для табло.
// Выпуск токенов живёт отдельно — см. Issuer в issuer.go.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.TokenStorage) потокобезопасно.
//   - Валидация никогда не возвращает ошибку наружу: любой внутренний сбой
//     сворачивается в результат VALIDATION_ERROR и no-op — породившая запись
//     не должна пострадать от здоровья валидатора.
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/go-shift-scheduler/internal/config"
	"github.com/pribylovaa/go-shift-scheduler/internal/models"
	"github.com/pribylovaa/go-shift-scheduler/internal/notify"
	"github.com/pribylovaa/go-shift-scheduler/internal/storage"
)

var (
	// ErrNoActiveToken — хранилище пусто, токен ещё не выпускался.
	// Транспорт: 404 на чтении текущего токена.
	ErrNoActiveToken = errors.New("no active token")
)

// Service описывает бизнес-логику qrtoken-сервиса.
type Service struct {
	storage  storage.TokenStorage
	cfg      config.TokenConfig
	notifier notify.Notifier

	// now вынесено в поле ради детерминированных тестов таймингов.
	now func() time.Time
}

// New создаёт новый экземпляр Service. Результаты валидации по умолчанию
// уходят в лог (notify.LogNotifier).
func New(storage storage.TokenStorage, cfg config.TokenConfig) *Service {
	return &Service{
		storage:  storage,
		cfg:      cfg,
		notifier: notify.LogNotifier{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier устанавливает внешний приёмник результатов валидации.
func (s *Service) SetNotifier(n notify.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// notifyEvent собирает событие для нотификатора из результата валидации.
func notifyEvent(recordID string, outcome models.Outcome, at time.Time) notify.Event {
	return notify.Event{
		RecordID:      recordID,
		IsValid:       outcome.IsValid,
		Reason:        string(outcome.Reason),
		Message:       outcome.Message,
		TimestampType: string(outcome.TimestampType),
		OccurredAt:    at,
	}
}

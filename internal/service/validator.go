package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-shift-scheduler/internal/models"
	logctx "github.com/pribylovaa/go-shift-scheduler/internal/pkg/log"
	"github.com/pribylovaa/go-shift-scheduler/internal/storage"
)

// HandleScheduleEvent — точка входа валидатора: принимает пару до/после
// записи смены, решает, сработал ли триггер, и валидирует предъявленный токен.
//
// Контракт (намеренно без возврата ошибки):
//   - триггер не сработал (ни одна из отметок не изменилась на новое
//     значение) — (nil, false), побочных эффектов нет;
//   - триггер сработал — результат валидации и true; результат уже отправлен
//     нотификатору, метрики инкрементированы.
//
// Политика побочных эффектов: исход валидации не блокирует и не откатывает
// породившую запись — она закоммичена до вызова. Превращение валидатора в
// гейт — изменение модели доверия, а не исправление.
func (s *Service) HandleScheduleEvent(ctx context.Context, event models.ScheduleEvent) (*models.Outcome, bool) {
	tsType, ok := event.TriggeredBy()
	if !ok {
		return nil, false
	}

	outcome := s.validate(ctx, event.After.QRTokenUsed, tsType)
	validationsTotal.WithLabelValues(string(outcome.Reason)).Inc()

	s.publish(ctx, event.RecordID, outcome)

	return &outcome, true
}

// CurrentToken возвращает последний выпущенный токен (для табло с QR-кодом).
// Пустое хранилище — ErrNoActiveToken.
func (s *Service) CurrentToken(ctx context.Context) (*models.Token, error) {
	const op = "service/validator/CurrentToken"

	token, err := s.storage.LatestToken(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoToken) {
			return nil, fmt.Errorf("%s: %w", op, ErrNoActiveToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// validate реализует шестишаговый контракт принятия решения.
// Порядок проверок фиксирован: несовпадение значения проверяется раньше
// истечения, чтобы реплей устаревшего-но-корректного токена давал
// различимый TOKEN_EXPIRED, а не общий mismatch.
func (s *Service) validate(ctx context.Context, provided any, tsType models.TimestampType) models.Outcome {
	const op = "service/validator/validate"

	lg := logctx.From(ctx)

	// 1. Токен отсутствует или не строка.
	value, ok := provided.(string)
	if !ok || value == "" {
		return reject(models.ReasonMissingToken, "schedule write carried no usable token", tsType)
	}

	// 2. Последний выпущенный токен.
	stored, err := s.storage.LatestToken(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoToken) {
			return reject(models.ReasonNoActiveToken, "no token has been issued yet", tsType)
		}

		// Внутренний сбой: логируем и сворачиваем в VALIDATION_ERROR —
		// породившая запись не должна пострадать.
		lg.Error("token_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return reject(models.ReasonValidationError, "token validation failed internally", tsType)
	}

	now := s.now()

	// 3. Строгое строковое сравнение, без нормализации.
	if value != stored.Value {
		return reject(models.ReasonTokenMismatch, "submitted token does not match the current one", tsType)
	}

	// 4. Истечение.
	if stored.Expired(now) {
		return reject(models.ReasonTokenExpired, "submitted token has expired", tsType)
	}

	// 5. Защита от рассинхрона часов.
	if stored.NotYetValid(now) {
		return reject(models.ReasonTokenNotValidYet, "submitted token is not valid yet", tsType)
	}

	// 6. Успех.
	return models.Outcome{
		IsValid:       true,
		Reason:        models.ReasonValid,
		Message:       "token accepted",
		TimestampType: tsType,
	}
}

// publish отдаёт результат нотификатору. Ошибки доставки только логируются.
func (s *Service) publish(ctx context.Context, recordID string, outcome models.Outcome) {
	const op = "service/validator/publish"

	event := notifyEvent(recordID, outcome, s.now())
	if err := s.notifier.Publish(ctx, event); err != nil {
		logctx.From(ctx).Error("outcome_publish_failed",
			slog.String("op", op),
			slog.String("record_id", recordID),
			slog.String("err", err.Error()),
		)
	}
}

func reject(reason models.Reason, message string, tsType models.TimestampType) models.Outcome {
	return models.Outcome{
		IsValid:       false,
		Reason:        reason,
		Message:       message,
		TimestampType: tsType,
	}
}

package models

import "time"

// ScheduleRecord — срез записи смены из внешней системы планирования.
// Сервису важны только три поля: отметки прихода/ухода и предъявленный токен.
// Отметки опциональны (nil — поле ещё не проставлено). QRTokenUsed намеренно
// имеет тип any: клиент может прислать не-строку, и это штатный случай
// отказа MISSING_TOKEN, а не ошибка декодирования.
type ScheduleRecord struct {
	CheckInAt   *time.Time
	CheckOutAt  *time.Time
	QRTokenUsed any
}

// ScheduleEvent — пара до/после одной записи смены, как её отдаёт триггерный
// слой хранилища. Валидация срабатывает только если CheckInAt или CheckOutAt
// изменились на новое непустое значение.
type ScheduleEvent struct {
	RecordID string
	Before   ScheduleRecord
	After    ScheduleRecord
}

// TimestampType — какая из отметок инициировала валидацию.
type TimestampType string

const (
	TimestampCheckIn  TimestampType = "check-in"
	TimestampCheckOut TimestampType = "check-out"
)

// changedTo сообщает, изменилось ли поле-отметка на новое непустое значение.
func changedTo(before, after *time.Time) bool {
	if after == nil {
		return false
	}

	if before == nil {
		return true
	}

	return !before.Equal(*after)
}

// TriggeredBy возвращает тип отметки, изменение которой должно инициировать
// валидацию, и признак того, что триггер вообще сработал. Изменения прочих
// полей записи триггером не являются. Если изменились обе отметки,
// приоритет у ухода — это более поздняя фаза смены.
func (e ScheduleEvent) TriggeredBy() (TimestampType, bool) {
	if changedTo(e.Before.CheckOutAt, e.After.CheckOutAt) {
		return TimestampCheckOut, true
	}

	if changedTo(e.Before.CheckInAt, e.After.CheckInAt) {
		return TimestampCheckIn, true
	}

	return "", false
}

// Package shift — чистые функции нормализации отметок смены.
// Окружающее приложение хранит приход/уход в разнородных представлениях
// (нативные временные метки, строки RFC3339, legacy-строки без зоны, unix-время
// в секундах или миллисекундах); здесь единая точка приведения этих значений
// к time.Time и подсчёта отработанного времени и статуса смены.
package shift

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrBadClockValue — отметка отсутствует или не поддаётся разбору.
	ErrBadClockValue = errors.New("bad clock value")
	// ErrCheckOutBeforeIn — уход раньше прихода.
	ErrCheckOutBeforeIn = errors.New("check-out before check-in")
)

// Status — фаза смены относительно отметок.
type Status string

const (
	StatusScheduled Status = "scheduled" // прихода ещё нет
	StatusActive    Status = "active"    // приход есть, ухода нет
	StatusCompleted Status = "completed" // обе отметки проставлены
)

// unixMillisFloor — граница, выше которой числовое значение трактуется как
// миллисекунды, а не секунды (≈ 5138-й год в секундах, ≈ 1973-й в мс).
const unixMillisFloor = 1e11

// Поддерживаемые строковые формы отметок, в порядке попыток.
var clockLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // legacy-строки без зоны трактуются как UTC
	"2006-01-02T15:04:05",
}

// ParseClockTime приводит разнородное значение отметки к time.Time (UTC).
// Нераспознанное/пустое значение — (zero, false).
func ParseClockTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x.UTC(), true

	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}
		return x.UTC(), true

	case string:
		for _, layout := range clockLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false

	case int64:
		return fromUnix(float64(x))

	case float64:
		return fromUnix(x)

	default:
		return time.Time{}, false
	}
}

// fromUnix трактует число как unix-время: миллисекунды для больших значений,
// иначе секунды.
func fromUnix(v float64) (time.Time, bool) {
	if v <= 0 {
		return time.Time{}, false
	}

	if v >= unixMillisFloor {
		return time.UnixMilli(int64(v)).UTC(), true
	}

	return time.Unix(int64(v), 0).UTC(), true
}

// WorkedDuration — отработанное время между приходом и уходом.
// Обе отметки обязательны; уход раньше прихода — ErrCheckOutBeforeIn.
func WorkedDuration(checkIn, checkOut any) (time.Duration, error) {
	in, ok := ParseClockTime(checkIn)
	if !ok {
		return 0, ErrBadClockValue
	}

	out, ok := ParseClockTime(checkOut)
	if !ok {
		return 0, ErrBadClockValue
	}

	if out.Before(in) {
		return 0, ErrCheckOutBeforeIn
	}

	return out.Sub(in), nil
}

// WorkedHours — отработанные часы, округлённые до двух знаков.
func WorkedHours(checkIn, checkOut any) (float64, error) {
	d, err := WorkedDuration(checkIn, checkOut)
	if err != nil {
		return 0, err
	}

	return math.Round(d.Hours()*100) / 100, nil
}

// ShiftStatus — фаза смены по наличию отметок.
func ShiftStatus(checkIn, checkOut any) Status {
	if _, ok := ParseClockTime(checkIn); !ok {
		return StatusScheduled
	}

	if _, ok := ParseClockTime(checkOut); !ok {
		return StatusActive
	}

	return StatusCompleted
}

// SplitOvertime делит отработанное время по глобальному дневному порогу
// (правило переработки, задаваемое администратором). Порог <= 0 означает
// «переработка не считается».
func SplitOvertime(worked, threshold time.Duration) (regular, overtime time.Duration) {
	if threshold <= 0 || worked <= threshold {
		return worked, 0
	}

	return threshold, worked - threshold
}

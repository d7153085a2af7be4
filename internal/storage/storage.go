package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-shift-scheduler/internal/models"
)

var (
	// ErrNoToken — хранилище пусто: ни один токен ещё не выпускался.
	ErrNoToken = errors.New("no active token")
	// ErrMalformedToken — запись в хранилище не поддаётся декодированию.
	ErrMalformedToken = errors.New("malformed token record")
)

// Scheme — схема идентичности токена в хранилище.
type Scheme string

const (
	// SchemeSingleSlot — один изменяемый документ «текущий токен».
	SchemeSingleSlot Scheme = "single_slot"
	// SchemeAppendOnly — новый документ на каждый выпуск, упорядочено по issued_at.
	SchemeAppendOnly Scheme = "append_only"
)

// TokenStorage описывает операции над QR-токенами.
//
// Семантика не зависит от схемы идентичности:
//   - SaveToken — create-or-replace: при single_slot заменяет документ слота,
//     при append_only добавляет новый; прежний токен не удаляется до коммита
//     новой записи.
//   - LatestToken — последний выпущенный токен (issued_at DESC, limit 1).
//     Пустое хранилище — ErrNoToken.
type TokenStorage interface {
	SaveToken(ctx context.Context, token models.Token) error
	LatestToken(ctx context.Context) (*models.Token, error)

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}

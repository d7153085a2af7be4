package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-shift-scheduler/internal/config"
	"github.com/pribylovaa/go-shift-scheduler/internal/models"
	logctx "github.com/pribylovaa/go-shift-scheduler/internal/pkg/log"
	"github.com/pribylovaa/go-shift-scheduler/internal/storage"
)

// IssuerState — состояние наблюдения за хранилищем токенов.
// Переходы: loading -> {ready, missing, error}; состояние отражает то,
// что issuer видит в хранилище, и не зависит от ретраев самой ротации.
type IssuerState string

const (
	IssuerLoading IssuerState = "loading"
	IssuerReady   IssuerState = "ready"
	IssuerMissing IssuerState = "missing"
	IssuerError   IssuerState = "error"
)

// IssuerStatus — снимок состояния issuer'а для служебного эндпойнта.
type IssuerStatus struct {
	State        IssuerState
	IssuedAt     time.Time
	ExpiresAt    time.Time
	NextRotation time.Time
	LastError    string
}

// Issuer поддерживает непрерывно свежий токен с ограниченным окном действия.
//
// Инварианты планирования:
//   - ровно один отложенный таймер ротации на экземпляр: цикл Run владеет
//     таймером единолично, каждое перепланирование заменяет предыдущее;
//   - ротация назначается не позже expires_at текущего токена:
//     delay = min(max(expiresAt-now, 0), Window); при пустом хранилище — Window;
//   - сбой записи не фатален: прежний токен не удалён и остаётся действующим,
//     повтор идёт по собственному расписанию (RetryInterval).
//
// Несколько экземпляров (например, два табло) могут писать наперегонки —
// это допустимо: каждая запись несёт согласованную пару issued_at/expires_at,
// а читатели берут «последний по issued_at», так что исход детерминирован.
type Issuer struct {
	id      uuid.UUID
	storage storage.TokenStorage
	cfg     config.TokenConfig

	// kick — запрос ручной ротации; проходит через тот же единственный
	// таймер-цикл, так что более одной ротации в полёте быть не может.
	kick chan struct{}

	mu     sync.Mutex
	status IssuerStatus

	now func() time.Time
}

// NewIssuer создаёт issuer в состоянии loading. Жизненный цикл запускается
// отдельно через Run.
func NewIssuer(storage storage.TokenStorage, cfg config.TokenConfig) *Issuer {
	return &Issuer{
		id:      uuid.New(),
		storage: storage,
		cfg:     cfg,
		kick:    make(chan struct{}, 1),
		status:  IssuerStatus{State: IssuerLoading},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run — единственный владелец таймера ротации; блокируется до отмены ctx.
func (iss *Issuer) Run(ctx context.Context) {
	lg := logctx.From(ctx).With(slog.String("issuer_id", iss.id.String()))
	ctx = logctx.Into(ctx, lg)

	// Первичное наблюдение — аналог initial subscribe.
	timer := time.NewTimer(iss.observe(ctx))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-iss.kick:
			// Ручная ротация: гасим отложенный таймер перед внеплановой.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		if err := iss.Rotate(ctx); err != nil {
			timer.Reset(iss.retryLater(err))
			continue
		}

		timer.Reset(iss.observe(ctx))
	}
}

// Rotate выпускает и персистит новый токен: issued_at = now,
// expires_at = issued_at + Window. Времена нормализованы до миллисекунд,
// чтобы прочитанный из хранилища токен был бит-точен записанному.
func (iss *Issuer) Rotate(ctx context.Context) error {
	const op = "service/issuer/Rotate"

	now := iss.now().Truncate(time.Millisecond)
	token := models.Token{
		Value:     generateTokenValue(),
		IssuedAt:  now,
		ExpiresAt: now.Add(iss.cfg.Window),
	}

	if err := iss.storage.SaveToken(ctx, token); err != nil {
		rotationsTotal.WithLabelValues("error").Inc()
		logctx.From(ctx).Error("token_rotation_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)

		return fmt.Errorf("%s: %w", op, err)
	}

	rotationsTotal.WithLabelValues("ok").Inc()
	logctx.From(ctx).Info("token_rotated",
		slog.Time("issued_at", token.IssuedAt),
		slog.Time("expires_at", token.ExpiresAt),
	)

	return nil
}

// ForceRotate просит цикл Run выполнить внеплановую ротацию (админ-операция).
// Неблокирующий: повторный запрос при уже ожидающем — no-op.
func (iss *Issuer) ForceRotate() {
	select {
	case iss.kick <- struct{}{}:
	default:
	}
}

// Status возвращает снимок состояния issuer'а.
func (iss *Issuer) Status() IssuerStatus {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	return iss.status
}

// observe перечитывает хранилище, обновляет машину состояний и возвращает
// задержку до следующей ротации по правилу планирования.
func (iss *Issuer) observe(ctx context.Context) time.Duration {
	token, err := iss.storage.LatestToken(ctx)

	switch {
	case err == nil:
		// Если часы ушли и expires_at уже в прошлом, delay схлопывается в 0 —
		// ротация произойдёт почти немедленно, а не через целое окно.
		delay := min(max(time.Until(token.ExpiresAt), 0), iss.cfg.Window)
		iss.setStatus(IssuerStatus{
			State:        IssuerReady,
			IssuedAt:     token.IssuedAt,
			ExpiresAt:    token.ExpiresAt,
			NextRotation: iss.now().Add(delay),
		})
		issuerUp.Set(1)

		return delay

	case errors.Is(err, storage.ErrNoToken):
		delay := iss.cfg.Window
		iss.setStatus(IssuerStatus{
			State:        IssuerMissing,
			NextRotation: iss.now().Add(delay),
		})
		issuerUp.Set(0)

		return delay

	default:
		return iss.retryLater(err)
	}
}

// retryLater фиксирует транзиентную ошибку и назначает повтор.
func (iss *Issuer) retryLater(err error) time.Duration {
	delay := iss.cfg.RetryInterval

	iss.mu.Lock()
	iss.status.State = IssuerError
	iss.status.LastError = err.Error()
	iss.status.NextRotation = iss.now().Add(delay)
	iss.mu.Unlock()

	issuerUp.Set(0)

	return delay
}

func (iss *Issuer) setStatus(st IssuerStatus) {
	iss.mu.Lock()
	iss.status = st
	iss.mu.Unlock()
}

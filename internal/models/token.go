// Package models содержит доменные сущности qrtoken-сервиса.
package models

import "time"

// Token — единица доверия для события прихода/ухода.
// Важно:
//   - Value — непрозрачная случайная строка (base64url, энтропия класса 128 бит),
//     уникальная для каждого выпуска; сравнение наружу — строгое строковое.
//   - IssuedAt — момент выпуска (UTC), монотонно растёт от выпуска к выпуску.
//   - ExpiresAt — всегда IssuedAt + окно действия (по умолчанию 60s).
//
// Жизненный цикл: токен создаётся Issuer'ом по таймеру, вытесняется следующим
// выпуском и никогда не изменяется после записи.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired сообщает, истёк ли токен к моменту now.
func (t Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// NotYetValid сообщает, что now раньше момента выпуска (защита от рассинхрона часов).
func (t Token) NotYetValid(now time.Time) bool {
	return now.Before(t.IssuedAt)
}

package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	mathrand "math/rand/v2"
	"time"
)

// tokenEntropyBytes — 16 байт (энтропия класса 128 бит): вероятность коллизии
// значений за время жизни системы пренебрежимо мала.
const tokenEntropyBytes = 16

// generateTokenValue возвращает непрозрачное значение токена: base64url от
// криптостойких случайных байт. Если системный источник недоступен,
// применяется запасной генератор.
func generateTokenValue() string {
	b := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return fallbackTokenValue()
	}

	return base64.RawURLEncoding.EncodeToString(b)
}

// fallbackTokenValue — запасной генератор для сред без криптостойкого
// источника: слабая случайная компонента дополняется монотонной временной,
// чтобы исключить тривиальные повторы.
func fallbackTokenValue() string {
	var b [tokenEntropyBytes]byte
	binary.BigEndian.PutUint64(b[:8], mathrand.Uint64())
	binary.BigEndian.PutUint64(b[8:], uint64(time.Now().UnixNano()))

	return base64.RawURLEncoding.EncodeToString(b[:])
}

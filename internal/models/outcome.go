package models

// Reason — машиночитаемый код результата валидации.
type Reason string

const (
	ReasonValid            Reason = "VALID"
	ReasonMissingToken     Reason = "MISSING_TOKEN"
	ReasonNoActiveToken    Reason = "NO_ACTIVE_TOKEN"
	ReasonTokenMismatch    Reason = "TOKEN_MISMATCH"
	ReasonTokenExpired     Reason = "TOKEN_EXPIRED"
	ReasonTokenNotValidYet Reason = "TOKEN_NOT_VALID_YET"
	ReasonValidationError  Reason = "VALIDATION_ERROR"
)

// Outcome — эфемерный результат валидации. Не персистится; сразу уходит
// внешнему диспетчеру уведомлений.
type Outcome struct {
	IsValid       bool
	Reason        Reason
	Message       string
	TimestampType TimestampType
}

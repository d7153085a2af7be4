// apierr стандартизирует ответы об ошибках HTTP-слоя qrtoken-service.
// На вход — доменная ошибка сервиса, на выход — корректный HTTP-статус и
// краткое безопасное message без утечки внутренних деталей.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-shift-scheduler/internal/service"
)

// APIError — единый формат ошибки для клиентов.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
// Неопознанные ошибки схлопываются в 500/internal без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	switch {
	case err == nil:
		// Программная ошибка вызова: не маскируем багом вида «200 с ошибкой».
		return http.StatusInternalServerError, body("internal", "internal error")

	case errors.Is(err, service.ErrNoActiveToken):
		return http.StatusNotFound, body("no_active_token", "no token has been issued yet")

	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, body("bad_request", "malformed request body")

	default:
		return http.StatusInternalServerError, body("internal", "internal error")
	}
}

// errBadRequest — локальный маркер ошибок разбора входа.
var errBadRequest = errors.New("bad request")

// BadRequest возвращает ошибку, которую ToHTTP отобразит в 400/bad_request.
func BadRequest() error { return errBadRequest }

// WriteError пишет унифицированный JSON-ответ об ошибке, подхватывая
// X-Request-Id из запроса.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func body(code, message string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: message}}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"

	"recordformatter/exporter"
	"recordformatter/importer"
)

// AppError ошибка HTTP-слоя со статусом и сообщением для клиента
type AppError struct {
	Code    int    `json:"status_code"` // HTTP статус код
	Message string `json:"message"`     // Сообщение для пользователя
	Err     error  `json:"-"`           // Внутренняя ошибка для логов
	Context string `json:"-"`
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает вложенную ошибку для errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode реализует middleware.HTTPError
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage реализует middleware.HTTPError
func (e *AppError) UserMessage() string {
	return e.Message
}

// GetContext реализует middleware.HTTPError
func (e *AppError) GetContext() string {
	return e.Context
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(context string) *AppError {
	e.Context = context
	return e
}

// NewValidationError создает ошибку 400 Bad Request
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewPayloadTooLargeError создает ошибку 413
func NewPayloadTooLargeError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusRequestEntityTooLarge,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedMediaError создает ошибку 415
func NewUnsupportedMediaError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusUnsupportedMediaType,
		Message: message,
		Err:     err,
	}
}

// NewUnprocessableError создает ошибку 422: файл прочитан, но не содержит нужных колонок
func NewUnprocessableError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		Err:     err,
	}
}

// NewServiceUnavailableError создает ошибку 503
func NewServiceUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewInternalError создает ошибку 500.
// Клиент получает общее сообщение, детали только в логах.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     errors.Join(errors.New(message), err),
	}
}

// FromImportError переводит ошибку импорта в AppError по ее sentinel-значению
func FromImportError(err error) *AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return NewUnsupportedMediaError("Unsupported input file format", err)
	case errors.Is(err, importer.ErrMissingColumn):
		return NewUnprocessableError(err.Error(), err)
	case errors.Is(err, importer.ErrUnsupportedEncoding):
		return NewValidationError("Unsupported CSV encoding", err)
	default:
		return NewValidationError("Failed to read input file", err)
	}
}

// WrapError оборачивает ошибку с контекстом.
// AppError сохраняет свой статус, остальные ошибки становятся InternalError.
func WrapError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
			Context: appErr.Context,
		}
	}

	if errors.Is(err, exporter.ErrUnsupportedFormat) {
		return NewValidationError(message, err)
	}

	return NewInternalError(message, err)
}

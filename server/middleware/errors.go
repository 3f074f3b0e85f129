package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPError ошибка со статусом и сообщением для клиента.
// Интерфейс нужен, чтобы middleware не зависел от пакета server/errors.
type HTTPError interface {
	error
	StatusCode() int
	UserMessage() string
	GetContext() string
	Unwrap() error
}

// ErrorResponse структура ответа об ошибке
type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError отвечает JSON-ошибкой и прерывает цепочку обработчиков.
// Ошибки без HTTPError считаются внутренними, их текст клиенту не отдается.
func WriteError(c *gin.Context, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	reqID := GetRequestIDFromGin(c)

	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		statusCode = httpErr.StatusCode()
		message = httpErr.UserMessage()
	}

	attrs := []any{
		"error", err,
		"status_code", statusCode,
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	if httpErr != nil && httpErr.GetContext() != "" {
		attrs = append(attrs, "context", httpErr.GetContext())
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP error", attrs...)
	} else {
		logger.Warn("HTTP error", attrs...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:     message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: reqID,
	})
}

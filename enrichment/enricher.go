package enrichment

import (
	"context"
	"strings"
	"time"
)

// Причины неудачного поиска, используются как метка метрик
const (
	ReasonTransport  = "transport"
	ReasonStatus     = "status"
	ReasonDecode     = "decode"
	ReasonNotFound   = "not_found"
	ReasonEmptyCode  = "empty_code"
	ReasonEmptyQuery = "empty_query"
)

// LookupResult результат обращения к одному уровню поиска кода
type LookupResult struct {
	Source    string    `json:"source"`    // Название уровня (geocoder, commune)
	Timestamp time.Time `json:"timestamp"` // Время ответа
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Reason    string    `json:"reason,omitempty"` // Причина неудачи, см. Reason*
	Status    int       `json:"status,omitempty"` // HTTP статус для ReasonStatus

	Query string  `json:"query"`
	Code  string  `json:"code,omitempty"`  // Код коммуны INSEE
	Label string  `json:"label,omitempty"` // Что нашел сервис
	Score float64 `json:"score,omitempty"` // Уверенность геокодера (0-1)
}

// Transient сообщает, что неудача могла быть временной и результат нельзя кэшировать
func (r *LookupResult) Transient() bool {
	if r == nil || r.Success {
		return false
	}
	switch r.Reason {
	case ReasonTransport:
		return true
	case ReasonStatus:
		return transientStatus(r.Status)
	default:
		return false
	}
}

// Enricher уровень поиска кода коммуны по адресу
type Enricher interface {
	// Lookup ищет код по адресу. Промах возвращается как результат с Success=false, а не как ошибка.
	Lookup(ctx context.Context, address string) (*LookupResult, error)

	// GetName возвращает название уровня
	GetName() string

	// GetPriority возвращает приоритет (чем меньше, тем раньше опрашивается)
	GetPriority() int

	// IsAvailable проверяет, включен ли уровень
	IsAvailable() bool
}

// EnricherConfig конфигурация уровня поиска
type EnricherConfig struct {
	BaseURL         string        `json:"base_url"`
	Timeout         time.Duration `json:"timeout"`
	RateLimitPerSec float64       `json:"rate_limit_per_sec"`
	Enabled         bool          `json:"enabled"`
	Priority        int           `json:"priority"`
	MaxRetries      int           `json:"max_retries"` // Повторы при сетевых ошибках, 429 и 5xx
	RetryDelay      time.Duration `json:"retry_delay"` // Первая задержка, далее удваивается
}

// CacheConfig конфигурация кэша
type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	TTL             time.Duration `json:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// ResolvedCode результат разрешения кода для одной строки.
// Нулевое значение означает, что код не найден.
type ResolvedCode struct {
	Code   string `json:"code,omitempty"`
	Source string `json:"source,omitempty"` // Уровень, давший код
}

// Unresolved код не найден ни одним уровнем
var Unresolved = ResolvedCode{}

// IsResolved проверяет, найден ли код
func (c ResolvedCode) IsResolved() bool {
	return c.Code != ""
}

// CityToken выделяет город из адреса: текст после последней запятой или весь адрес
func CityToken(address string) string {
	address = strings.TrimSpace(address)
	if i := strings.LastIndex(address, ","); i >= 0 {
		return strings.TrimSpace(address[i+1:])
	}
	return address
}

func failedResult(source, query, reason, message string) *LookupResult {
	return &LookupResult{
		Source:    source,
		Timestamp: time.Now(),
		Query:     query,
		Reason:    reason,
		Error:     message,
	}
}

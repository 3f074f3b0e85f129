package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"recordformatter/enrichment"
	"recordformatter/exporter"
)

// Config конфигурация форматтера записей
type Config struct {
	// Сервер
	Port            string `json:"port"`
	MaxUploadSizeMB int    `json:"max_upload_size_mb"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Входной и выходной файлы
	Input  *InputConfig  `json:"input"`
	Export *ExportConfig `json:"export"`

	// Разрешение кодов коммун
	Enrichment *EnrichmentConfig `json:"enrichment"`
}

// InputConfig параметры чтения входного файла
type InputConfig struct {
	Path         string `json:"path"`
	Sheet        string `json:"sheet"`
	CSVSeparator string `json:"csv_separator"`
	CSVEncoding  string `json:"csv_encoding"`
}

// ExportConfig параметры записи результата
type ExportConfig struct {
	Path      string            `json:"path"`
	NameMode  exporter.NameMode `json:"name_mode"`
	SheetName string            `json:"sheet_name"`
}

// EnrichmentConfig конфигурация разрешения кодов
type EnrichmentConfig struct {
	Enabled          bool                                  `json:"enabled"`
	Workers          int                                   `json:"workers"`
	UnresolvedMarker string                                `json:"unresolved_marker"`
	Services         map[string]*enrichment.EnricherConfig `json:"services"`
	Cache            *enrichment.CacheConfig               `json:"cache"`
}

// Separator возвращает разделитель CSV как руну
func (ic *InputConfig) Separator() rune {
	for _, r := range ic.CSVSeparator {
		return r
	}
	return ','
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		// Сервер
		Port:            getEnv("SERVER_PORT", "8080"),
		MaxUploadSizeMB: getEnvInt("MAX_UPLOAD_SIZE_MB", 20),

		// Логирование
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		Input: &InputConfig{
			Path:         getEnv("INPUT_PATH", "13_raw.xlsx"),
			Sheet:        os.Getenv("INPUT_SHEET"),
			CSVSeparator: getEnv("CSV_SEPARATOR", ","),
			CSVEncoding:  getEnv("CSV_ENCODING", "utf-8"),
		},

		Export: &ExportConfig{
			Path:      getEnv("OUTPUT_PATH", "formatted_output.xlsx"),
			NameMode:  exporter.NameMode(getEnv("EXPORT_NAME_MODE", string(exporter.NameCombined))),
			SheetName: getEnv("EXPORT_SHEET_NAME", exporter.DefaultSheetName),
		},

		Enrichment: LoadEnrichmentConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadEnrichmentConfig загружает конфигурацию уровней поиска и кэша
func LoadEnrichmentConfig() *EnrichmentConfig {
	services := map[string]*enrichment.EnricherConfig{
		enrichment.GeocoderName: {
			BaseURL:         getEnv("GEOCODER_BASE_URL", enrichment.DefaultGeocoderURL),
			Timeout:         getEnvDuration("GEOCODER_TIMEOUT", 10*time.Second),
			RateLimitPerSec: getEnvFloat("GEOCODER_RATE_LIMIT_PER_SEC", 40),
			Enabled:         getEnvBool("GEOCODER_ENABLED", true),
			Priority:        getEnvInt("GEOCODER_PRIORITY", 1),
			MaxRetries:      getEnvInt("GEOCODER_MAX_RETRIES", 2),
			RetryDelay:      getEnvDuration("GEOCODER_RETRY_DELAY", 200*time.Millisecond),
		},
		enrichment.CommuneName: {
			BaseURL:         getEnv("COMMUNE_BASE_URL", enrichment.DefaultCommuneURL),
			Timeout:         getEnvDuration("COMMUNE_TIMEOUT", 10*time.Second),
			RateLimitPerSec: getEnvFloat("COMMUNE_RATE_LIMIT_PER_SEC", 40),
			Enabled:         getEnvBool("COMMUNE_ENABLED", true),
			Priority:        getEnvInt("COMMUNE_PRIORITY", 2),
			MaxRetries:      getEnvInt("COMMUNE_MAX_RETRIES", 2),
			RetryDelay:      getEnvDuration("COMMUNE_RETRY_DELAY", 200*time.Millisecond),
		},
	}

	return &EnrichmentConfig{
		Enabled:          getEnvBool("ENRICHMENT_ENABLED", true),
		Workers:          getEnvInt("ENRICHMENT_WORKERS", runtime.GOMAXPROCS(0)),
		UnresolvedMarker: getEnv("ENRICHMENT_UNRESOLVED_MARKER", "UNRESOLVED"),
		Services:         services,
		Cache: &enrichment.CacheConfig{
			Enabled:         getEnvBool("ENRICHMENT_CACHE_ENABLED", true),
			TTL:             getEnvDuration("ENRICHMENT_CACHE_TTL", time.Hour),
			CleanupInterval: getEnvDuration("ENRICHMENT_CACHE_CLEANUP", 10*time.Minute),
		},
	}
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool принимает значения strconv.ParseBool (true, 1, false, 0 ...)
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

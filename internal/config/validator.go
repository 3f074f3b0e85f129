package config

import (
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"recordformatter/enrichment"
	"recordformatter/exporter"
)

var (
	validLogLevels    = []string{"DEBUG", "INFO", "WARN", "ERROR"}
	validCSVEncodings = []string{"utf-8", "windows-1252", "iso-8859-1", "iso-8859-15"}
)

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.MaxUploadSizeMB < 1 {
		errors = append(errors, "max upload size must be at least 1 MB")
	}

	// Валидация уровня логирования
	if c.LogLevel != "" && !containsFold(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", ")))
	}

	if c.Input != nil {
		if err := c.Input.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("input config: %v", err))
		}
	}

	if c.Export != nil {
		if err := c.Export.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("export config: %v", err))
		}
	}

	if c.Enrichment != nil {
		if err := c.Enrichment.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("enrichment config: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate проверяет параметры входного файла
func (ic *InputConfig) Validate() error {
	var errors []string

	if utf8.RuneCountInString(ic.CSVSeparator) != 1 {
		errors = append(errors, fmt.Sprintf("CSV separator must be a single character, got %q", ic.CSVSeparator))
	} else if ic.CSVSeparator == "\"" || ic.CSVSeparator == "\n" || ic.CSVSeparator == "\r" {
		errors = append(errors, fmt.Sprintf("CSV separator %q is not allowed", ic.CSVSeparator))
	}

	if ic.CSVEncoding != "" && !containsFold(validCSVEncodings, ic.CSVEncoding) {
		errors = append(errors, fmt.Sprintf("invalid CSV encoding: %s (valid: %s)",
			ic.CSVEncoding, strings.Join(validCSVEncodings, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// Validate проверяет параметры экспорта
func (ec *ExportConfig) Validate() error {
	if _, err := exporter.ParseNameMode(string(ec.NameMode)); err != nil {
		return err
	}
	if ec.Path != "" {
		if _, err := exporter.DetectFormat(ec.Path); err != nil {
			return fmt.Errorf("output path: %w", err)
		}
	}
	return nil
}

// Validate проверяет корректность конфигурации обогащения
func (ec *EnrichmentConfig) Validate() error {
	var errors []string

	if ec.Workers < 0 {
		errors = append(errors, "workers must not be negative")
	}

	if ec.Enabled && strings.TrimSpace(ec.UnresolvedMarker) == "" {
		errors = append(errors, "unresolved marker is required when enrichment is enabled")
	}

	// Валидация сервисов
	for name, service := range ec.Services {
		if service == nil {
			errors = append(errors, fmt.Sprintf("service %s is nil", name))
			continue
		}
		if !service.Enabled {
			continue
		}

		if u, err := url.Parse(service.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("service %s base URL must be an http(s) URL, got %q", name, service.BaseURL))
		}

		if service.Timeout < 100*time.Millisecond {
			errors = append(errors, fmt.Sprintf("service %s timeout must be at least 100ms", name))
		}

		if service.RateLimitPerSec <= 0 {
			errors = append(errors, fmt.Sprintf("service %s rate limit must be positive", name))
		}

		if service.Priority < 1 {
			errors = append(errors, fmt.Sprintf("service %s priority must be at least 1", name))
		}

		if service.MaxRetries < 0 || service.MaxRetries > 5 {
			errors = append(errors, fmt.Sprintf("service %s max retries must be between 0 and 5", name))
		}
	}

	// Валидация кэша
	if ec.Cache != nil && ec.Cache.Enabled {
		if ec.Cache.TTL < time.Minute {
			errors = append(errors, "cache TTL must be at least 1 minute")
		}
		if ec.Cache.CleanupInterval != 0 && ec.Cache.CleanupInterval < time.Minute {
			errors = append(errors, "cache cleanup interval must be 0 or at least 1 minute")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("enrichment validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GetDefaults возвращает конфигурацию со значениями по умолчанию
func GetDefaults() *Config {
	return &Config{
		Port:            "8080",
		MaxUploadSizeMB: 20,
		LogLevel:        "INFO",
		Input: &InputConfig{
			Path:         "13_raw.xlsx",
			CSVSeparator: ",",
			CSVEncoding:  "utf-8",
		},
		Export: &ExportConfig{
			Path:      "formatted_output.xlsx",
			NameMode:  exporter.NameCombined,
			SheetName: exporter.DefaultSheetName,
		},
		Enrichment: GetDefaultEnrichmentConfig(),
	}
}

// GetDefaultEnrichmentConfig возвращает конфигурацию обогащения со значениями по умолчанию
func GetDefaultEnrichmentConfig() *EnrichmentConfig {
	return &EnrichmentConfig{
		Enabled:          true,
		Workers:          runtime.GOMAXPROCS(0),
		UnresolvedMarker: "UNRESOLVED",
		Services: map[string]*enrichment.EnricherConfig{
			enrichment.GeocoderName: {
				BaseURL:         enrichment.DefaultGeocoderURL,
				Timeout:         10 * time.Second,
				RateLimitPerSec: 40,
				Enabled:         true,
				Priority:        1,
				MaxRetries:      2,
				RetryDelay:      200 * time.Millisecond,
			},
			enrichment.CommuneName: {
				BaseURL:         enrichment.DefaultCommuneURL,
				Timeout:         10 * time.Second,
				RateLimitPerSec: 40,
				Enabled:         true,
				Priority:        2,
				MaxRetries:      2,
				RetryDelay:      200 * time.Millisecond,
			},
		},
		Cache: &enrichment.CacheConfig{
			Enabled:         true,
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
	}
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordformatter/enrichment"
	"recordformatter/exporter"
)

func TestConfigLogLevelValidation(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		wantErr  bool
	}{
		{"valid DEBUG", "DEBUG", false},
		{"valid INFO", "INFO", false},
		{"valid WARN", "WARN", false},
		{"valid ERROR", "ERROR", false},
		{"valid lowercase", "debug", false},
		{"valid mixed case", "Info", false},
		{"invalid level", "INVALID", true},
		{"invalid level TRACE", "TRACE", true},
		{"empty level", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			cfg.LogLevel = tt.logLevel

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "13_raw.xlsx", cfg.Input.Path)
	assert.Equal(t, ',', cfg.Input.Separator())
	assert.Equal(t, "formatted_output.xlsx", cfg.Export.Path)
	assert.Equal(t, exporter.NameCombined, cfg.Export.NameMode)
	assert.True(t, cfg.Enrichment.Enabled)
	assert.Equal(t, "UNRESOLVED", cfg.Enrichment.UnresolvedMarker)

	geocoder := cfg.Enrichment.Services[enrichment.GeocoderName]
	require.NotNil(t, geocoder)
	assert.Equal(t, enrichment.DefaultGeocoderURL, geocoder.BaseURL)
	assert.Equal(t, 1, geocoder.Priority)

	commune := cfg.Enrichment.Services[enrichment.CommuneName]
	require.NotNil(t, commune)
	assert.Equal(t, 2, commune.Priority)
	assert.Equal(t, 2, commune.MaxRetries)
	assert.Equal(t, time.Hour, cfg.Enrichment.Cache.TTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CSV_SEPARATOR", ";")
	t.Setenv("CSV_ENCODING", "windows-1252")
	t.Setenv("OUTPUT_PATH", "out/result.csv")
	t.Setenv("EXPORT_NAME_MODE", "parts")
	t.Setenv("ENRICHMENT_ENABLED", "false")
	t.Setenv("ENRICHMENT_WORKERS", "3")
	t.Setenv("GEOCODER_BASE_URL", "http://localhost:7878")
	t.Setenv("GEOCODER_TIMEOUT", "2s")
	t.Setenv("COMMUNE_ENABLED", "0")
	t.Setenv("ENRICHMENT_CACHE_TTL", "30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ';', cfg.Input.Separator())
	assert.Equal(t, "windows-1252", cfg.Input.CSVEncoding)
	assert.Equal(t, "out/result.csv", cfg.Export.Path)
	assert.Equal(t, exporter.NameParts, cfg.Export.NameMode)
	assert.False(t, cfg.Enrichment.Enabled)
	assert.Equal(t, 3, cfg.Enrichment.Workers)
	assert.Equal(t, "http://localhost:7878", cfg.Enrichment.Services[enrichment.GeocoderName].BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Enrichment.Services[enrichment.GeocoderName].Timeout)
	assert.False(t, cfg.Enrichment.Services[enrichment.CommuneName].Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Enrichment.Cache.TTL)
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")
	t.Setenv("EXPORT_NAME_MODE", "initials")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be between 1 and 65535")
	assert.Contains(t, err.Error(), "export config")
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("RF_TEST_INT", "abc")
	t.Setenv("RF_TEST_BOOL", "maybe")
	t.Setenv("RF_TEST_DURATION", "soon")

	assert.Equal(t, 5, getEnvInt("RF_TEST_INT", 5))
	assert.True(t, getEnvBool("RF_TEST_BOOL", true))
	assert.Equal(t, time.Second, getEnvDuration("RF_TEST_DURATION", time.Second))
	assert.Equal(t, "x", getEnv("RF_TEST_UNSET", "x"))
}

func TestInputConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   InputConfig
		wantErr string
	}{
		{"defaults", InputConfig{CSVSeparator: ",", CSVEncoding: "utf-8"}, ""},
		{"tab separator", InputConfig{CSVSeparator: "\t", CSVEncoding: "ISO-8859-1"}, ""},
		{"empty separator", InputConfig{CSVSeparator: ""}, "single character"},
		{"long separator", InputConfig{CSVSeparator: ";;"}, "single character"},
		{"quote separator", InputConfig{CSVSeparator: "\""}, "not allowed"},
		{"unknown encoding", InputConfig{CSVSeparator: ",", CSVEncoding: "koi8-r"}, "invalid CSV encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExportConfigValidate(t *testing.T) {
	assert.NoError(t, (&ExportConfig{NameMode: exporter.NameParts, Path: "a.sqlite"}).Validate())
	assert.NoError(t, (&ExportConfig{NameMode: exporter.NameCombined}).Validate())
	assert.Error(t, (&ExportConfig{NameMode: "initials"}).Validate())
	assert.Error(t, (&ExportConfig{NameMode: exporter.NameCombined, Path: "out.pdf"}).Validate())
}

func TestEnrichmentConfigValidate(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		assert.NoError(t, GetDefaultEnrichmentConfig().Validate())
	})

	t.Run("bad service", func(t *testing.T) {
		cfg := GetDefaultEnrichmentConfig()
		geocoder := cfg.Services[enrichment.GeocoderName]
		geocoder.BaseURL = "ftp://example.org"
		geocoder.Timeout = time.Millisecond
		geocoder.RateLimitPerSec = 0
		geocoder.Priority = 0
		geocoder.MaxRetries = 9

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base URL")
		assert.Contains(t, err.Error(), "timeout")
		assert.Contains(t, err.Error(), "rate limit")
		assert.Contains(t, err.Error(), "priority")
		assert.Contains(t, err.Error(), "max retries")
	})

	t.Run("disabled service is not checked", func(t *testing.T) {
		cfg := GetDefaultEnrichmentConfig()
		cfg.Services[enrichment.CommuneName].Enabled = false
		cfg.Services[enrichment.CommuneName].BaseURL = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("cache", func(t *testing.T) {
		cfg := GetDefaultEnrichmentConfig()
		cfg.Cache.TTL = time.Second
		cfg.Cache.CleanupInterval = time.Second

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache TTL")
		assert.Contains(t, err.Error(), "cleanup interval")
	})

	t.Run("marker", func(t *testing.T) {
		cfg := GetDefaultEnrichmentConfig()
		cfg.UnresolvedMarker = " "
		assert.Error(t, cfg.Validate())

		cfg.Enabled = false
		assert.NoError(t, cfg.Validate())
	})

	t.Run("negative workers", func(t *testing.T) {
		cfg := GetDefaultEnrichmentConfig()
		cfg.Workers = -1
		assert.Error(t, cfg.Validate())
	})
}

package contract

import (
	"testing"
	"time"

	"github.com/growthlab/marshalgo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a minimal raw input that passes every validation step.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		User:            "ada",
		Password:        "lovelace",
		Program:         "Cosmology",
		Workers:         4,
		MaxAttempts:     3,
		ShowSaved:       "selected",
		RaiseOnFail:     "yes",
		Output:          "text",
		Emoji:           "no",
		Color:           "no",
		CacheBackend:    "sqlite",
		FetchLogBackend: "none",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name:   "valid minimal config",
			mutate: func(in *ConfigRawInput) {},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
				assert.Equal(t, schema.ShowSavedSelected, cfg.ShowSaved)
				assert.Equal(t, time.Duration(DefaultSliceStepDays)*24*time.Hour, cfg.SliceStep)
				assert.Equal(t, DefaultConnectRetries, cfg.ConnectRetries)
				assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
				assert.InDelta(t, DefaultRateLimit, cfg.RateLimit, 1e-9)
				assert.True(t, cfg.RaiseOnFail)
			},
		},
		{
			name:        "missing credentials",
			mutate:      func(in *ConfigRawInput) { in.Password = "" },
			expectError: true,
		},
		{
			name:        "zero workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: true,
		},
		{
			name:        "too many workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = MaxWorkers + 1 },
			expectError: true,
		},
		{
			name:        "zero max attempts",
			mutate:      func(in *ConfigRawInput) { in.MaxAttempts = 0 },
			expectError: true,
		},
		{
			name:        "invalid show-saved filter",
			mutate:      func(in *ConfigRawInput) { in.ShowSaved = "maybe" },
			expectError: true,
		},
		{
			name:        "invalid output format",
			mutate:      func(in *ConfigRawInput) { in.Output = "yaml" },
			expectError: true,
		},
		{
			name:        "invalid raise-on-fail",
			mutate:      func(in *ConfigRawInput) { in.RaiseOnFail = "perhaps" },
			expectError: true,
		},
		{
			name: "explicit time window and step",
			mutate: func(in *ConfigRawInput) {
				in.Start = "2026-01-01 00:00:00"
				in.End = "2026-02-01 00:00:00"
				in.SliceStep = "7 days"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime)
				assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), cfg.EndTime)
				assert.Equal(t, 7*24*time.Hour, cfg.SliceStep)
			},
		},
		{
			name: "start after end",
			mutate: func(in *ConfigRawInput) {
				in.Start = "2026-02-01 00:00:00"
				in.End = "2026-01-01 00:00:00"
			},
			expectError: true,
		},
		{
			name:        "invalid slice step",
			mutate:      func(in *ConfigRawInput) { in.SliceStep = "sideways" },
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "oracle" },
			expectError: true,
		},
		{
			name: "mysql backend without connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "mysql"
				in.CacheDBConnect = ""
			},
			expectError: true,
		},
		{
			name: "mysql backend with valid connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "mysql"
				in.CacheDBConnect = "user:pass@tcp(localhost:3306)/marshal"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.MySQLBackend, cfg.CacheBackend)
			},
		},
		{
			name: "postgres backend missing dbname",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "postgresql"
				in.CacheDBConnect = "host=localhost user=marshal"
			},
			expectError: true,
		},
		{
			name: "cache and fetch log share default sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.FetchLogBackend = "sqlite"
				in.CacheDBConnect = "/tmp/same.db"
				in.FetchLogDBConnect = "/tmp/same.db"
			},
			expectError: true,
		},
		{
			name: "base url gets trailing slash",
			mutate: func(in *ConfigRawInput) {
				in.BaseURL = "http://marshal.example.edu/cgi-bin/growth"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://marshal.example.edu/cgi-bin/growth/", cfg.BaseURL)
			},
		},
		{
			name:        "negative rate limit",
			mutate:      func(in *ConfigRawInput) { in.RateLimit = -1 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestCloneWithTimeWindow(t *testing.T) {
	cfg := &Config{
		Program:   "Cosmology",
		StartTime: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		Workers:   8,
	}

	newStart := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	newEnd := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	clone := cfg.CloneWithTimeWindow(newStart, newEnd)

	assert.Equal(t, newStart, clone.StartTime)
	assert.Equal(t, newEnd, clone.EndTime)
	assert.Equal(t, cfg.Program, clone.Program)
	assert.Equal(t, cfg.Workers, clone.Workers)

	// Original stays untouched
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime)
}

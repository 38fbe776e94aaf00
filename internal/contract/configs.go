package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/growthlab/marshalgo/schema"
)

// Default values for configuration.
const (
	DefaultLookbackDays   = 30
	DefaultSliceStepDays  = 5
	DefaultWorkers        = 12
	MaxWorkers            = 64
	DefaultMaxAttempts    = 5
	DefaultConnectRetries = 5
	DefaultRequestTimeout = 60 * time.Second
	DefaultRateLimit      = 4.0 // requests per second against the portal
)

// DefaultBaseURL is the CGI root of the GROWTH Marshal.
const DefaultBaseURL = "http://skipper.caltech.edu:8080/cgi-bin/growth/"

// DateTimeFormat is the date time representation the Marshal understands in
// query parameters and emits in result fields.
const DateTimeFormat = "2006-01-02 15:04:05"

// Config holds the runtime configuration for a portal session.
// This struct remains the "final, validated" config.
type Config struct {
	BaseURL  string
	User     string
	Password string
	Program  string

	StartTime time.Time
	EndTime   time.Time
	SliceStep time.Duration

	Workers     int
	MaxAttempts int
	ShowSaved   schema.ShowSaved
	RaiseOnFail bool

	ConnectRetries int
	RequestTimeout time.Duration
	RateLimit      float64

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	FetchLogBackend   schema.DatabaseBackend
	FetchLogDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	BaseURL           string  `mapstructure:"base-url"`
	User              string  `mapstructure:"user"`
	Password          string  `mapstructure:"password"`
	Program           string  `mapstructure:"program"`
	Start             string  `mapstructure:"start"`
	End               string  `mapstructure:"end"`
	SliceStep         string  `mapstructure:"slice-step"`
	Workers           int     `mapstructure:"workers"`
	MaxAttempts       int     `mapstructure:"max-attempts"`
	ShowSaved         string  `mapstructure:"show-saved"`
	RaiseOnFail       string  `mapstructure:"raise-on-fail"`
	ConnectRetries    int     `mapstructure:"connect-retries"`
	TimeoutStr        string  `mapstructure:"timeout"`
	RateLimit         float64 `mapstructure:"rate-limit"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Width             int     `mapstructure:"width"`
	CacheBackend      string  `mapstructure:"cache-backend"`
	CacheDBConnect    string  `mapstructure:"cache-db-connect"`
	FetchLogBackend   string  `mapstructure:"fetchlog-backend"`
	FetchLogDBConnect string  `mapstructure:"fetchlog-db-connect"`
	Emoji             string  `mapstructure:"emoji"`
	Color             string  `mapstructure:"color"`

	// --- Fields from commentCmd.Flags() ---
	CommentType   string `mapstructure:"comment-type"`
	DuplicateMode string `mapstructure:"duplicate-mode"`

	// --- Fields from ingestCmd.Flags() ---
	Verify bool `mapstructure:"verify"`

	// --- Fields from sourcesCmd.Flags() ---
	Keys       string `mapstructure:"keys"`
	DefaultVal string `mapstructure:"default"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithTimeWindow creates a copy of the Config and sets the new StartTime and EndTime.
func (c *Config) CloneWithTimeWindow(start time.Time, end time.Time) *Config {
	clone := c.Clone()
	clone.StartTime = start
	clone.EndTime = end
	return clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateCredentials(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processExecutorKnobs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// validateSimpleInputs processes and validates all non-credential, non-time fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Program = strings.TrimSpace(input.Program)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// Parse raise-on-fail flag
	raise, err := ParseBoolString(input.RaiseOnFail)
	if err != nil {
		return fmt.Errorf("invalid --raise-on-fail value: %w", err)
	}
	cfg.RaiseOnFail = raise

	// --- 1. Workers Validation ---
	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. MaxAttempts Validation ---
	if input.MaxAttempts <= 0 {
		return fmt.Errorf("max-attempts must be greater than 0 (received %d)", input.MaxAttempts)
	}
	cfg.MaxAttempts = input.MaxAttempts

	// --- 3. ShowSaved Validation ---
	cfg.ShowSaved = schema.ShowSaved(strings.TrimSpace(input.ShowSaved))
	if _, ok := schema.ValidShowSaved[cfg.ShowSaved]; !ok {
		return fmt.Errorf("invalid show-saved filter '%s'. must be none, selected, notSelected, onlySelected, onlyNotSelected, all", input.ShowSaved)
	}

	// --- 4. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", cfg.Output)
	}

	return nil
}

// validateCredentials checks the base URL and credential pair.
func validateCredentials(cfg *Config, input *ConfigRawInput) error {
	cfg.BaseURL = strings.TrimSpace(input.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}

	cfg.User = input.User
	cfg.Password = input.Password
	if cfg.User == "" || cfg.Password == "" {
		return fmt.Errorf("portal credentials are required: set user and password via flags, config file, or MARSHALGO_USER / MARSHALGO_PASSWORD")
	}
	return nil
}

// processTimeRange handles the date parsing, slice step and time range validation.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	now := time.Now()
	cfg.EndTime = now
	cfg.StartTime = cfg.EndTime.Add(-DefaultLookbackDays * 24 * time.Hour)

	// --- Process Start Time ---
	if input.Start != "" {
		t, err := ParseMarshalTime(input.Start, now)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		cfg.StartTime = t
	}

	// --- Process End Time ---
	if input.End != "" {
		t, err := ParseMarshalTime(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		cfg.EndTime = t
	}

	// --- Process Slice Step ---
	cfg.SliceStep = DefaultSliceStepDays * 24 * time.Hour
	if input.SliceStep != "" {
		step, err := ParseLookbackDuration(input.SliceStep)
		if err != nil {
			return fmt.Errorf("invalid slice-step: %w", err)
		}
		cfg.SliceStep = step
	}

	// --- Final Validation ---
	if cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)",
			cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}

	return nil
}

// processExecutorKnobs validates the wire-level retry and throttle settings.
func processExecutorKnobs(cfg *Config, input *ConfigRawInput) error {
	if input.ConnectRetries < 0 {
		return fmt.Errorf("connect-retries cannot be negative (received %d)", input.ConnectRetries)
	}
	cfg.ConnectRetries = input.ConnectRetries
	if cfg.ConnectRetries == 0 {
		cfg.ConnectRetries = DefaultConnectRetries
	}

	cfg.RequestTimeout = DefaultRequestTimeout
	if input.TimeoutStr != "" {
		timeout, err := ParseLookbackDuration(input.TimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.RequestTimeout = timeout
	}

	cfg.RateLimit = input.RateLimit
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate-limit cannot be negative (received %.2f)", input.RateLimit)
	}

	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and fetch-log backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Fetch-Log Backend Validation ---
	cfg.FetchLogBackend = schema.DatabaseBackend(strings.ToLower(input.FetchLogBackend))
	if cfg.FetchLogBackend != "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.FetchLogBackend]; !ok {
			return fmt.Errorf("invalid fetchlog backend '%s'. must be sqlite, mysql, postgresql, none", input.FetchLogBackend)
		}
		cfg.FetchLogDBConnect = input.FetchLogDBConnect
		if err := ValidateDatabaseConnectionString(cfg.FetchLogBackend, cfg.FetchLogDBConnect); err != nil {
			return err
		}

		// Validate that cache and fetch log use different databases
		if cfg.CacheBackend == cfg.FetchLogBackend && cfg.CacheBackend != schema.NoneBackend {
			// For SQLite, resolve to actual file paths to catch default path conflicts
			if cfg.CacheBackend == schema.SQLiteBackend {
				cacheDBPath := cfg.CacheDBConnect
				if cacheDBPath == "" {
					cacheDBPath = GetCacheDBFilePath()
				}
				fetchDBPath := cfg.FetchLogDBConnect
				if fetchDBPath == "" {
					fetchDBPath = GetFetchLogDBFilePath()
				}
				if cacheDBPath == fetchDBPath {
					return fmt.Errorf("cache and fetch-log storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
				}
			}
		}
	}

	return nil
}

package cmd

import (
	"fmt"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/internal/iocache"
	"github.com/growthlab/marshalgo/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// fetchlogSetup loads minimal configuration needed for fetch-log operations.
// This is used by commands that need fetch-log access without full shared setup.
func fetchlogSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get fetch-log-related config values
	backendStr := viper.GetString("fetchlog-backend")
	connStr := viper.GetString("fetchlog-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize stores with the loaded config (no response caching for fetch-log commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize fetch-log store: %w", err)
	}

	cfg.FetchLogBackend = backend
	cfg.FetchLogDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// fetchlogSetupWrapper wraps fetchlogSetup to provide PreRunE for fetch-log commands.
func fetchlogSetupWrapper(_ *cobra.Command, _ []string) error {
	return fetchlogSetup()
}

// fetchlogMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func fetchlogMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get fetch-log-related config values
	backendStr := viper.GetString("fetchlog-backend")
	connStr := viper.GetString("fetchlog-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetFetchLogDBFilePath()
	}

	cfg.FetchLogBackend = backend
	cfg.FetchLogDBConnect = connStr

	return nil
}

// fetchlogMigrateSetupWrapper wraps fetchlogMigrateSetup to provide PreRunE for migrate command.
func fetchlogMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return fetchlogMigrateSetup()
}

// fetchlogCmd focused on fetch-run tracking management.
//
// Note: Fetch-log subcommands use minimal initialization (fetchlogSetup)
// instead of the full sharedSetup used by portal commands.
var fetchlogCmd = &cobra.Command{
	Use:   "fetchlog",
	Short: "Manage batch fetch tracking and exports",
	Long: `Manage the historical record of batch lightcurve fetches.

When enabled, marshalgo tracks every batch fetch run, storing:
- Run metadata (timestamp, configuration, duration)
- Per-source outcomes (rows, detections, errors)

This enables longitudinal monitoring of portal health and data export for
analytics tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show fetch-log statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  marshalgo fetchlog status

  # Export for analysis in pandas/DuckDB
  marshalgo fetchlog export --output-file fetch-data.parquet`,
}

// fetchlogClearCmd clears the fetch-log data.
var fetchlogClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all batch fetch tracking data",
	Long: `Delete all stored fetch runs and per-source outcome history.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  marshalgo fetchlog export --output-file backup.parquet
  marshalgo fetchlog clear`,
	PreRunE: fetchlogSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearFetchLog(cfg.FetchLogBackend, contract.GetFetchLogDBFilePath(), cfg.FetchLogDBConnect); err != nil {
			contract.LogFatal("Failed to clear fetch-log data", err)
		}
		fmt.Println("Fetch-log data cleared successfully.")
	},
}

// fetchlogStatusCmd shows fetch-log status.
var fetchlogStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display fetch tracking statistics and connection details",
	Long: `Show detailed information about batch fetch tracking.

Displays:
- Backend type and connection status
- Total number of fetch runs stored
- Last and oldest run timestamps
- Table sizes

Examples:
  # Check fetch tracking status
  marshalgo fetchlog status`,
	PreRunE: fetchlogSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetFetchStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get fetch-log status", err)
		}
		iocache.PrintFetchLogStatus(status)
	},
}

// fetchlogExportCmd exports fetch-log data to Parquet files.
var fetchlogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export fetch history to Parquet for analytics",
	Long: `Export all stored fetch-log data to Parquet format.

Exports two datasets:
- Fetch runs - metadata about each batch execution
- Source fetches - per-source outcomes with row and detection counts

Requires: --output-file parameter

Examples:
  # Export all data
  marshalgo fetchlog export --output-file fetch-data.parquet

  # Use with DuckDB for analysis
  marshalgo fetchlog export --output-file data.parquet
  duckdb -c "SELECT * FROM read_parquet('data.parquet/runs.parquet') LIMIT 10"`,
	PreRunE: fetchlogSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteFetchLogExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export fetch-log data", err)
		}
	},
}

// fetchlogMigrateCmd runs database migrations for the fetch-log store.
var fetchlogMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the fetch-log store.

By default, migrates to the latest version. Use --target-version for specific
versions.

Examples:
  # Migrate to latest version (default)
  marshalgo fetchlog migrate

  # Migrate to specific version
  marshalgo fetchlog migrate --target-version 2

  # Rollback to previous version
  marshalgo fetchlog migrate --target-version 0`,
	PreRunE: fetchlogMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateFetchLog(cfg.FetchLogBackend, cfg.FetchLogDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

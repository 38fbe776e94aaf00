// Package cmd defines the command-line interface for marshalgo.
package cmd

import (
	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(lightcurveCmd)
	rootCmd.AddCommand(spectraCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(fetchlogCmd)

	// Add the sources subcommands to the parent sources command
	sourcesCmd.AddCommand(sourcesRetrieveCmd)
	sourcesCmd.AddCommand(sourcesFindCmd)

	// Add the candidates subcommands to the parent candidates command
	candidatesCmd.AddCommand(candidatesSaveCmd)

	// Add the lightcurve subcommands to the parent lightcurve command
	lightcurveCmd.AddCommand(lightcurveFetchCmd)
	lightcurveCmd.AddCommand(lightcurveFitCmd)
	lightcurveCmd.AddCommand(lightcurveAllCmd)

	// Add the spectra subcommands to the parent spectra command
	spectraCmd.AddCommand(spectraCheckCmd)
	spectraCmd.AddCommand(spectraDownloadCmd)
	spectraCmd.AddCommand(spectraAllCmd)

	// Add the comment subcommands to the parent comment command
	commentCmd.AddCommand(commentPostCmd)
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentDeleteCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the fetchlog subcommands to the parent fetchlog command
	fetchlogCmd.AddCommand(fetchlogClearCmd)
	fetchlogCmd.AddCommand(fetchlogStatusCmd)
	fetchlogCmd.AddCommand(fetchlogExportCmd)
	fetchlogCmd.AddCommand(fetchlogMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("base-url", "", "Marshal CGI base URL (defaults to the Caltech portal)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Marshal username")
	rootCmd.PersistentFlags().StringP("password", "p", "", "Marshal password (prefer MARSHALGO_PASSWORD)")
	rootCmd.PersistentFlags().String("program", "", "Science program name, case-sensitive")
	rootCmd.PersistentFlags().String("start", "", "Start date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "End date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("slice-step", "", "Width of one scanning-page query slice (e.g. '5 days')")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("max-attempts", contract.DefaultMaxAttempts, "Rounds of slice retries before giving up")
	rootCmd.PersistentFlags().String("show-saved", string(schema.ShowSavedSelected), "Scanning-page filter: none, selected, notSelected, onlySelected, onlyNotSelected, all")
	rootCmd.PersistentFlags().String("raise-on-fail", "yes", "Fail when slices are still broken after all retries (yes/no)")
	rootCmd.PersistentFlags().Int("connect-retries", contract.DefaultConnectRetries, "Connection-level retries per request")
	rootCmd.PersistentFlags().String("timeout", "", "Per-request timeout (e.g. '60s')")
	rootCmd.PersistentFlags().Float64("rate-limit", contract.DefaultRateLimit, "Maximum requests per second against the portal")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Response cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("fetchlog-backend", "", "Fetch-run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("fetchlog-db-connect", "", "Database connection string for fetch-run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of sourcesRetrieveCmd to Viper
	sourcesRetrieveCmd.Flags().String("keys", "", "Comma-separated list of dotted-path keys to retrieve")
	sourcesRetrieveCmd.Flags().String("default", "n/a", "Value substituted for keys missing from the source")
	if err := viper.BindPFlags(sourcesRetrieveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding retrieve flags", err)
	}

	// Bind the shared comment flags to Viper; post and delete both honor them
	commentCmd.PersistentFlags().String("comment-type", string(schema.CommentPlain), "Annotation type: comment, redshift, classification, info")
	commentCmd.PersistentFlags().String("duplicate-mode", string(schema.DuplicateNo), "Behavior when an identical comment exists: no, add, edit")
	if err := viper.BindPFlags(commentCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding comment flags", err)
	}

	// Bind all flags of ingestCmd to Viper
	ingestCmd.Flags().Bool("verify", false, "Re-query the scanning page to verify the ingested ids landed")
	if err := viper.BindPFlags(ingestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest flags", err)
	}

	// Bind all flags of fetchlogMigrateCmd to Viper
	fetchlogMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(fetchlogMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fetchlog migrate flags", err)
	}
}

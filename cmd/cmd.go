// Package cmd defines the command-line interface for devpulse.
package cmd

import (
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the snapshots subcommands to the parent snapshots command
	snapshotsCmd.AddCommand(snapshotsListCmd)
	snapshotsCmd.AddCommand(snapshotsStatusCmd)
	snapshotsCmd.AddCommand(snapshotsExportCmd)
	snapshotsCmd.AddCommand(snapshotsClearCmd)
	snapshotsCmd.AddCommand(snapshotsMigrateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("command", "", "Label recorded with the run (defaults to '<range> report')")
	flags.String("target-user", "", "Developer to focus the narrative on")
	flags.String("source", string(schema.LocalSource), "Harvest source: local or github")
	flags.String("github-token", "", "GitHub token (prefer the GITHUB_TOKEN env variable)")
	flags.String("github-owner", "", "GitHub repository owner")
	flags.String("github-repo", "", "GitHub repository name")
	flags.String("github-base-url", "", "GitHub Enterprise API base URL")
	flags.String("repo-path", ".", "Path inside the Git repository for the local source")
	flags.Int("retries", contract.DefaultRetries, "Retries for rate limited or failed remote calls")
	flags.String("provider", string(schema.OfflineProvider), "Narrator provider: openai or gemini or offline")
	flags.String("model", "", "Narrator model name (provider default when empty)")
	flags.String("api-key", "", "Narrator API key (prefer OPENAI_API_KEY or GEMINI_API_KEY)")
	flags.String("llm-base-url", "", "Base URL for an OpenAI compatible or Gemini endpoint")
	flags.Float64("temperature", contract.DefaultTemperature, "Narrator sampling temperature (0 to 2)")
	flags.Int("max-tokens", contract.DefaultMaxTokens, "Maximum tokens per narrator response")
	flags.String("llm-timeout", contract.DefaultLLMTimeout.String(), "Timeout for one narrator call")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	flags.String("output", string(schema.TextOut), "Output format: text or json or csv or markdown or html")
	flags.String("output-file", "", "Optional path to write output to")
	flags.String("charts-dir", "", "Optional directory to write chart HTML files to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("emoji", "no", "Enable emojis in text output (yes/no/true/false/1/0)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or memory or none")
	flags.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("cache-ttl", contract.DefaultCacheTTL.String(), "How long harvested activity stays cached")
	flags.String("report-backend", "", "Report store backend: sqlite or mysql or postgresql or none (DATABASE_URL when empty)")
	flags.String("report-db-connect", "", "Database connection string for the report store (must differ from cache-db-connect)")
	flags.String("log-level", "warn", "Log level: debug or info or warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scheduleCmd to Viper
	scheduleCmd.Flags().String("cron", contract.DefaultCronSpec, "Cron schedule (standard 5-field or descriptor like @daily)")
	scheduleCmd.Flags().String("metrics-addr", "", "Address to serve prometheus /metrics on (e.g., :9090)")
	if err := viper.BindPFlags(scheduleCmd.Flags()); err != nil {
		contract.LogFatal("Error binding schedule flags", err)
	}

	// Bind all flags of snapshotsListCmd to Viper
	snapshotsListCmd.Flags().Int("limit", 10, "Number of snapshots to display")
	if err := viper.BindPFlags(snapshotsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshots list flags", err)
	}

	// Bind all flags of snapshotsExportCmd to Viper
	snapshotsExportCmd.Flags().String("format", string(schema.ParquetOut), "Export format: parquet or json or csv")
	if err := viper.BindPFlags(snapshotsExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshots export flags", err)
	}

	// Bind all flags of snapshotsMigrateCmd to Viper
	snapshotsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshots migrate flags", err)
	}
}

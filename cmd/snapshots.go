package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/internal/iocache"
	"github.com/huangsam/devpulse/internal/outwriter"
	"github.com/huangsam/devpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotsSetup validates store settings and opens only the report store.
func snapshotsSetup(_ *cobra.Command, _ []string) error {
	if err := storeSetup(); err != nil {
		return err
	}
	if err := iocache.InitStores("", "", cfg.ReportBackend, cfg.ReportDBConnect); err != nil {
		return fmt.Errorf("failed to initialize report store: %w", err)
	}
	return nil
}

// snapshotsMigrateSetup validates store settings without opening the store,
// so migrations can run against a fresh or partially migrated database.
func snapshotsMigrateSetup(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// reportStore returns the initialized report store or an error.
func reportStore() (contract.ReportStore, error) {
	if cacheManager == nil || cacheManager.GetReportStore() == nil {
		return nil, fmt.Errorf("report store is not initialized")
	}
	return cacheManager.GetReportStore(), nil
}

// sqlitePath returns the SQLite file for a connection string, falling back to the default.
func sqlitePath(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// snapshotsCmd focused on report history management.
//
// Note: Snapshot subcommands use minimal initialization (snapshotsSetup) instead of
// the full sharedSetup used by report commands. This avoids Git repo validation
// and narrator credential checks for simple storage operations.
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Manage stored metrics snapshots and narrator conversations",
	Long: `Manage the report history used for trend charts and exports.

Every report run stores:
- A metrics snapshot (DORA metrics, churn, raw metrics JSON)
- The prompt and response of each narrator call

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list    - Show the most recent snapshots
  status  - Show report store statistics
  export  - Export data to Parquet, JSON or CSV
  clear   - Remove all stored report data
  migrate - Run database schema migrations

Examples:
  # Check report store status
  devpulse snapshots status

  # Export for analysis in pandas/DuckDB
  devpulse snapshots export --output-file history`,
}

// snapshotsListCmd prints the most recent snapshots.
var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent metrics snapshots",
	Long: `Print the most recent stored snapshots, oldest first.

Examples:
  devpulse snapshots list --limit 5
  devpulse snapshots list --output json`,
	PreRunE: snapshotsSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := reportStore()
		if err != nil {
			return err
		}
		records, err := store.RecentSnapshots(viper.GetInt("limit"))
		if err != nil {
			return fmt.Errorf("failed to load snapshots: %w", err)
		}
		return outwriter.NewOutWriter().WriteSnapshots(records, cfg)
	},
}

// snapshotsStatusCmd shows report store status.
var snapshotsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display report store statistics and connection details",
	Long: `Show detailed information about the report store.

Displays:
- Backend type and connection status
- Number of stored snapshots and conversations
- Last and oldest snapshot timestamps
- Database table sizes

Examples:
  # Check report store status
  devpulse snapshots status`,
	PreRunE: snapshotsSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := reportStore()
		if err != nil {
			return err
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get report status: %w", err)
		}
		iocache.PrintReportStatus(os.Stdout, status)
		return nil
	},
}

// snapshotsExportCmd exports stored report data.
var snapshotsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored report data for BI tools and analytics",
	Long: `Export all stored snapshots and conversations.

Formats:
- parquet (default): <output-file>.snapshots.parquet and <output-file>.conversations.parquet
- json: one document with both datasets
- csv: snapshots only

Requires: --output-file parameter

Examples:
  # Export to Parquet
  devpulse snapshots export --output-file history

  # Use with DuckDB for analysis
  duckdb -c "SELECT time_range, avg(lead_time_hours) FROM read_parquet('history.snapshots.parquet') GROUP BY 1"

  # Export snapshots as CSV
  devpulse snapshots export --format csv --output-file history.csv`,
	PreRunE: snapshotsSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := reportStore()
		if err != nil {
			return err
		}
		mode := schema.OutputMode(strings.ToLower(viper.GetString("format")))
		return iocache.ExportReports(store, mode, cfg.OutputFile, os.Stdout)
	},
}

// snapshotsClearCmd clears the report store.
var snapshotsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored snapshots and conversations",
	Long: `Delete all stored report data.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the report tables and migration version

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  devpulse snapshots export --output-file backup
  devpulse snapshots clear`,
	PreRunE: snapshotsMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := sqlitePath(cfg.ReportDBConnect, contract.GetReportDBFilePath())
		if err := iocache.ClearReports(cfg.ReportBackend, path, cfg.ReportDBConnect); err != nil {
			return fmt.Errorf("failed to clear report data: %w", err)
		}
		fmt.Println("Report data cleared successfully.")
		return nil
	},
}

// snapshotsMigrateCmd runs database migrations for the report store.
var snapshotsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the report store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  devpulse snapshots migrate

  # Migrate to specific version
  devpulse snapshots migrate --target-version 1

  # Rollback to initial state
  devpulse snapshots migrate --target-version 0`,
	PreRunE: snapshotsMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateReports(cfg.ReportBackend, cfg.ReportDBConnect, targetVersion, os.Stdout); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	},
}

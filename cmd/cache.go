package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/internal/iocache"
	"github.com/spf13/cobra"
)

// cacheSetup validates store settings and opens only the activity cache.
func cacheSetup(_ *cobra.Command, _ []string) error {
	if err := storeSetup(); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return nil
}

// cacheCmd focused on cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the harvest activity cache",
	Long: `Manage the cache that stores harvested commits and pull requests.

Repeated reports for the same window within the cache TTL reuse the cached
activity instead of calling GitHub or git again.

Supported backends: SQLite (default), MySQL, PostgreSQL, Memory, or None

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  devpulse cache status

  # Clear cache after a force push
  devpulse cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached activity data",
	Long: `Delete all cached activity data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  devpulse cache clear

  # Clear MySQL cache (set connection string via env variable)
  DEVPULSE_CACHE_BACKEND=mysql DEVPULSE_CACHE_DB_CONNECT="..." devpulse cache clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return storeSetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		path := sqlitePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(cfg.CacheBackend, path, cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Println("Cache cleared successfully.")
		return nil
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the activity cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache table size

Examples:
  # Check cache status
  devpulse cache status`,
	PreRunE: cacheSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cacheManager == nil || cacheManager.GetActivityStore() == nil {
			return fmt.Errorf("activity cache is not initialized")
		}
		status, err := cacheManager.GetActivityStore().GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get cache status: %w", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
		return nil
	},
}

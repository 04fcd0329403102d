package contract

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/devpulse/schema"
)

// Default values for configuration.
const (
	DefaultPrecision   = 1
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
	DefaultLLMTimeout  = 60 * time.Second
	DefaultRetries     = 3
	DefaultCacheTTL    = time.Hour
	DefaultCronSpec    = "0 9 * * 1"

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-1.5-flash"
)

// CacheGranularity defines the time granularity for harvest cache keys.
const CacheGranularity = time.Hour

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a report.
// This struct remains the "final, validated" config.
type Config struct {
	Command    string
	TimeRange  schema.TimeRange
	TargetUser string

	Source        schema.HarvestSource
	GitHubToken   string // Please use env var as this is plaintext
	GitHubOwner   string
	GitHubRepo    string
	GitHubBaseURL string
	RepoPath      string
	Retries       int

	Provider    schema.NarratorProvider
	Model       string
	APIKey      string // Please use env var as this is plaintext
	LLMBaseURL  string
	Temperature float64
	MaxTokens   int
	LLMTimeout  time.Duration

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	ChartsDir  string
	Width      int // Terminal width override (0 = auto-detect)
	UseEmojis  bool
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	ReportBackend   schema.DatabaseBackend
	ReportDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string

	CronSpec    string
	MetricsAddr string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	TimeRangeStr string

	Command    string `mapstructure:"command"`
	TargetUser string `mapstructure:"target-user"`

	Source        string `mapstructure:"source"`
	GitHubToken   string `mapstructure:"github-token"`
	GitHubOwner   string `mapstructure:"github-owner"`
	GitHubRepo    string `mapstructure:"github-repo"`
	GitHubBaseURL string `mapstructure:"github-base-url"`
	RepoPath      string `mapstructure:"repo-path"`
	Retries       int    `mapstructure:"retries"`

	Provider     string  `mapstructure:"provider"`
	Model        string  `mapstructure:"model"`
	APIKey       string  `mapstructure:"api-key"`
	OpenAIAPIKey string  `mapstructure:"openai-api-key"`
	GeminiAPIKey string  `mapstructure:"gemini-api-key"`
	LLMBaseURL   string  `mapstructure:"llm-base-url"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max-tokens"`
	LLMTimeout   string  `mapstructure:"llm-timeout"`

	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	ChartsDir  string `mapstructure:"charts-dir"`
	Width      int    `mapstructure:"width"`
	Emoji      string `mapstructure:"emoji"`
	Color      string `mapstructure:"color"`

	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	CacheTTL       string `mapstructure:"cache-ttl"`

	ReportBackend   string `mapstructure:"report-backend"`
	ReportDBConnect string `mapstructure:"report-db-connect"`
	DatabaseURL     string `mapstructure:"database-url"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`

	CronSpec    string `mapstructure:"cron"`
	MetricsAddr string `mapstructure:"metrics-addr"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. The git client is only consulted for
// the local harvest source.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input); err != nil {
		return err
	}
	if err := processHarvestSource(ctx, cfg, client, input); err != nil {
		return err
	}
	if err := processNarrator(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessStoreConfig validates only the storage related inputs. It is used by
// commands that never harvest or narrate.
func ProcessStoreConfig(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ParseTimeRange converts a user string into a supported time range.
// An empty string yields the weekly default.
func ParseTimeRange(s string) (schema.TimeRange, error) {
	if strings.TrimSpace(s) == "" {
		return schema.Weekly, nil
	}
	tr := schema.TimeRange(strings.ToLower(strings.TrimSpace(s)))
	if !tr.IsValid() {
		return "", fmt.Errorf("invalid time range '%s'. must be daily, weekly, monthly", s)
	}
	return tr, nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			return nil
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

// ParseDatabaseURL translates a DATABASE_URL style value into a backend and
// a driver connection string. Supported schemes are sqlite, postgres,
// postgresql and mysql.
func ParseDatabaseURL(raw string) (schema.DatabaseBackend, string, error) {
	switch {
	case strings.HasPrefix(raw, "sqlite:///"):
		path := strings.TrimPrefix(raw, "sqlite:///")
		if path == "" {
			return "", "", fmt.Errorf("sqlite database url has no path: %s", raw)
		}
		return schema.SQLiteBackend, path, nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return schema.PostgreSQLBackend, raw, nil
	case strings.HasPrefix(raw, "mysql://"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", "", fmt.Errorf("invalid mysql database url: %w", err)
		}
		mc := mysql.NewConfig()
		mc.User = u.User.Username()
		mc.Passwd, _ = u.User.Password()
		mc.Net = "tcp"
		mc.Addr = u.Host
		mc.DBName = strings.TrimPrefix(u.Path, "/")
		mc.ParseTime = true
		if mc.DBName == "" {
			return "", "", fmt.Errorf("mysql database url has no database name: %s", raw)
		}
		return schema.MySQLBackend, mc.FormatDSN(), nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %s", raw)
	}
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateSimpleInputs processes and validates the output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Command = input.Command
	cfg.TargetUser = strings.TrimSpace(input.TargetUser)
	cfg.OutputFile = input.OutputFile
	cfg.ChartsDir = input.ChartsDir
	cfg.Width = input.Width
	cfg.CronSpec = input.CronSpec
	cfg.MetricsAddr = input.MetricsAddr

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, csv, markdown, html", input.Output)
	}

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if err := ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	return nil
}

// processTimeRange resolves the positional time range argument.
func processTimeRange(cfg *Config, input *ConfigRawInput) error {
	tr, err := ParseTimeRange(input.TimeRangeStr)
	if err != nil {
		return err
	}
	cfg.TimeRange = tr
	if cfg.Command == "" {
		cfg.Command = fmt.Sprintf("%s report", tr)
	}
	return nil
}

// processHarvestSource validates the fields required by the chosen harvester.
func processHarvestSource(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	cfg.Source = schema.HarvestSource(strings.ToLower(input.Source))
	if _, ok := schema.ValidHarvestSources[cfg.Source]; !ok {
		return fmt.Errorf("invalid source '%s'. must be github, local", input.Source)
	}

	if input.Retries < 0 {
		return fmt.Errorf("retries cannot be negative (received %d)", input.Retries)
	}
	cfg.Retries = input.Retries

	switch cfg.Source {
	case schema.GitHubSource:
		cfg.GitHubToken = input.GitHubToken
		cfg.GitHubOwner = strings.TrimSpace(input.GitHubOwner)
		cfg.GitHubRepo = strings.TrimSpace(input.GitHubRepo)
		cfg.GitHubBaseURL = input.GitHubBaseURL
		if cfg.GitHubOwner == "" || cfg.GitHubRepo == "" {
			return fmt.Errorf("github-owner and github-repo are required for the github source")
		}
	case schema.LocalSource:
		return resolveRepoPath(ctx, cfg, client, input)
	}
	return nil
}

// resolveRepoPath resolves the Git repository root for the local source.
func resolveRepoPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPath
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	if info, statErr := os.Stat(absSearchPath); statErr == nil && !info.IsDir() {
		absSearchPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, absSearchPath)
	if err != nil {
		return fmt.Errorf("repo-path %q is not inside a git repository: %w", searchPath, err)
	}
	cfg.RepoPath = gitRoot
	return nil
}

// processNarrator validates the provider, its credentials and generation settings.
func processNarrator(cfg *Config, input *ConfigRawInput) error {
	cfg.Provider = schema.NarratorProvider(strings.ToLower(input.Provider))
	if _, ok := schema.ValidNarratorProviders[cfg.Provider]; !ok {
		return fmt.Errorf("invalid provider '%s'. must be openai, gemini, offline", input.Provider)
	}

	if input.Temperature < 0 || input.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2 (received %.2f)", input.Temperature)
	}
	cfg.Temperature = input.Temperature

	if input.MaxTokens <= 0 {
		return fmt.Errorf("max-tokens must be greater than 0 (received %d)", input.MaxTokens)
	}
	cfg.MaxTokens = input.MaxTokens

	cfg.LLMTimeout = DefaultLLMTimeout
	if input.LLMTimeout != "" {
		d, err := time.ParseDuration(input.LLMTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid llm-timeout '%s'", input.LLMTimeout)
		}
		cfg.LLMTimeout = d
	}

	cfg.LLMBaseURL = input.LLMBaseURL
	cfg.Model = input.Model
	cfg.APIKey = input.APIKey

	switch cfg.Provider {
	case schema.OpenAIProvider:
		if cfg.APIKey == "" {
			cfg.APIKey = input.OpenAIAPIKey
		}
		if cfg.Model == "" {
			cfg.Model = DefaultOpenAIModel
		}
	case schema.GeminiProvider:
		if cfg.APIKey == "" {
			cfg.APIKey = input.GeminiAPIKey
		}
		if cfg.Model == "" {
			cfg.Model = DefaultGeminiModel
		}
	case schema.OfflineProvider:
		return nil
	}

	if cfg.APIKey == "" {
		return fmt.Errorf("an api key is required for the %s provider", cfg.Provider)
	}
	return nil
}

// validateBackendConfigs validates cache and report backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, memory, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		d, err := time.ParseDuration(input.CacheTTL)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid cache-ttl '%s'", input.CacheTTL)
		}
		cfg.CacheTTL = d
	}

	// --- Report Backend Validation ---
	reportBackend, reportConn := input.ReportBackend, input.ReportDBConnect
	if reportBackend == "" && input.DatabaseURL != "" {
		backend, conn, err := ParseDatabaseURL(input.DatabaseURL)
		if err != nil {
			return err
		}
		reportBackend, reportConn = string(backend), conn
	}
	if reportBackend == "" {
		reportBackend = string(schema.SQLiteBackend)
	}

	cfg.ReportBackend = schema.DatabaseBackend(strings.ToLower(reportBackend))
	if _, ok := schema.ValidReportBackends[cfg.ReportBackend]; !ok {
		return fmt.Errorf("invalid report backend '%s'. must be sqlite, mysql, postgresql, none", reportBackend)
	}
	cfg.ReportDBConnect = reportConn
	if err := ValidateDatabaseConnectionString(cfg.ReportBackend, cfg.ReportDBConnect); err != nil {
		return err
	}

	// Validate that cache and report storage use different SQLite files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.ReportBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		reportDBPath := cfg.ReportDBConnect
		if reportDBPath == "" {
			reportDBPath = GetReportDBFilePath()
		}
		if cacheDBPath == reportDBPath {
			return fmt.Errorf("cache and report storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/devpulse/schema"
)

// Color variables for console output.
var (
	HighColor   = color.New(color.FgRed, color.Bold) // HighColor represents standard danger.
	MediumColor = color.New(color.FgYellow)          // MediumColor represents standard caution, not bold.
	LowColor    = color.New(color.FgCyan)            // LowColor represents informational signal.
	OKColor     = color.New(color.FgGreen)
)

// GetPlainRiskLabel returns the display label for a risk level.
func GetPlainRiskLabel(risk schema.RiskLevel) string {
	switch risk {
	case schema.RiskHigh:
		return "High"
	case schema.RiskMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// GetColorRiskLabel returns a colored risk label for console output (table).
func GetColorRiskLabel(risk schema.RiskLevel) string {
	text := GetPlainRiskLabel(risk)
	switch risk {
	case schema.RiskHigh:
		return HighColor.Sprint(text)
	case schema.RiskMedium:
		return MediumColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".devpulse_cache.db"
	}
	return filepath.Join(homeDir, ".devpulse_cache.db")
}

// GetReportDBFilePath returns the path to the SQLite DB file for report storage.
func GetReportDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".devpulse_reports.db"
	}
	return filepath.Join(homeDir, ".devpulse_reports.db")
}

// Truncate shortens s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// TruncateWithEllipsis shortens s for table cells, keeping room for "...".
// Requires maxWidth > 3, otherwise s is returned unchanged.
func TruncateWithEllipsis(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

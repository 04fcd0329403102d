package outwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/devpulse/internal/charts"
	"github.com/huangsam/devpulse/schema"
)

// WriteChartFiles decodes each chart and writes it to dir as <type>.html.
// Returns the written paths in chart order.
func WriteChartFiles(items []schema.Chart, dir string) ([]string, error) {
	if dir == "" || len(items) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create charts directory: %w", err)
	}

	paths := make([]string, 0, len(items))
	for _, c := range items {
		data, err := charts.Decode(c)
		if err != nil {
			return paths, fmt.Errorf("failed to decode %s chart: %w", c.Type, err)
		}
		path := filepath.Join(dir, string(c.Type)+".html")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s chart: %w", c.Type, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

package outwriter

import (
	"os"

	"github.com/huangsam/devpulse/internal/contract"
	"golang.org/x/term"
)

const (
	fallbackTermWidth = 80 // CI and pipes report no size
	anomalyFixedWidth = 60 // kind, commit, author and severity columns
	minMessageWidth   = 20
	maxMessageWidth   = 90
)

// terminalWidth is the configured width override, else the stdout width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackTermWidth
}

// messageWidth is how many columns remain for an anomaly message.
func messageWidth(termWidth int) int {
	return min(max(termWidth-anomalyFixedWidth, minMessageWidth), maxMessageWidth)
}

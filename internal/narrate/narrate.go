// Package narrate turns pipeline metrics into prose through a text generator.
package narrate

import (
	"fmt"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// New builds the narrator selected by cfg.Provider.
func New(cfg *contract.Config) (contract.Narrator, error) {
	switch cfg.Provider {
	case schema.OpenAIProvider:
		return NewOpenAINarrator(cfg), nil
	case schema.GeminiProvider:
		return NewGeminiNarrator(cfg), nil
	case schema.OfflineProvider, "":
		return NewOfflineNarrator(), nil
	default:
		return nil, fmt.Errorf("unsupported narrator provider: %s", cfg.Provider)
	}
}

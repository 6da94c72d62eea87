package extract

import (
	"context"
	"fmt"
)

// Request is one single-turn call to a language model.
type Request struct {
	System string
	Prompt string
	// Name and Description label the response schema; Schema is nil for
	// free-text answers.
	Name        string
	Description string
	Schema      any
	Temperature float64
}

// Completer sends a request to a model and returns the raw text answer.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Provider names accepted by NewCompleter.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ProviderConfig selects and configures a model backend.
type ProviderConfig struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewCompleter(cfg ProviderConfig) (Completer, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("openai provider needs an API key")
		}
		return NewOpenAI(cfg), nil
	case ProviderOllama:
		return NewOllama(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
	"github.com/ollama/ollama/api"
)

const DefaultOllamaModel = "llama3.1"

// Ollama talks to a local or remote Ollama server.
type Ollama struct {
	model  string
	client *api.Client
}

type bearerTransport struct {
	token string
	rt    http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if r.Header.Get("Authorization") == "" {
		r.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.rt.RoundTrip(r)
}

// NewOllama connects to cfg.BaseURL, or to OLLAMA_HOST (default
// localhost:11434) when no URL is configured.
func NewOllama(cfg ProviderConfig) (*Ollama, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	if cfg.BaseURL == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
		return &Ollama{model: model, client: client}, nil
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	httpClient := http.DefaultClient
	if cfg.APIKey != "" {
		httpClient = &http.Client{Transport: &bearerTransport{token: cfg.APIKey, rt: http.DefaultTransport}}
	}
	return &Ollama{model: model, client: api.NewClient(u, httpClient)}, nil
}

func (c *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	msgs := []api.Message{}
	if req.System != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: req.System})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: req.Prompt})

	stream := false
	chat := &api.ChatRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": req.Temperature},
	}
	if req.Schema != nil {
		format, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("encode schema: %w", err)
		}
		chat.Format = format
	}

	var content string
	err := c.client.Chat(ctx, chat, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

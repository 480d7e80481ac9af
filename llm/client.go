// Package llm is an optional text-enrichment adapter backed by a local
// Ollama instance. It is never required for correctness: every entry point
// degrades to the input text when the service is disabled or unreachable.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"market-scout/config"
	"market-scout/utils"
)

// ErrDisabled is returned by Generate when the adapter is switched off.
var ErrDisabled = errors.New("llm: disabled (set ENABLE_LLM=true to enable)")

// Client talks to the Ollama HTTP API.
type Client struct {
	enabled bool
	host    string
	model   string
	http    *http.Client
	logger  *utils.Logger
}

// NewClient builds a Client from the application config.
func NewClient(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		enabled: cfg.EnableLLM,
		host:    strings.TrimRight(cfg.OllamaHost, "/"),
		model:   cfg.OllamaModel,
		http:    &http.Client{Timeout: time.Duration(cfg.OllamaTimeoutSec) * time.Second},
		logger:  logger,
	}
}

// Enabled reports whether the adapter is switched on.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Healthy reports whether the Ollama service is reachable. Always false when
// disabled.
func (c *Client) Healthy(ctx context.Context) bool {
	if !c.enabled {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("[llm] Health check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate produces text from the model for the given prompt. The optional
// system prompt sets context.
func (c *Client) Generate(ctx context.Context, prompt, system string) (string, error) {
	if !c.enabled {
		return "", ErrDisabled
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: system,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: unexpected status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if out.Response == "" {
		return "", errors.New("llm: empty response from model")
	}

	return strings.TrimSpace(out.Response), nil
}

const normalizeSystemPrompt = "You are a product listing normalizer for computer components. " +
	"Extract and standardize product information from Hebrew/English text. " +
	"Return only the normalized product name and key specifications."

// NormalizeListing asks the model to standardize a raw listing text. On any
// failure, or when the adapter is disabled, the input text is returned
// unchanged.
func (c *Client) NormalizeListing(ctx context.Context, text string) string {
	if !c.enabled {
		c.logger.Debug("[llm] Disabled, returning original text")
		return text
	}

	out, err := c.Generate(ctx, "Normalize this product listing: "+text, normalizeSystemPrompt)
	if err != nil {
		c.logger.Warn("[llm] Normalization failed, returning original text: %v", err)
		return text
	}
	return out
}

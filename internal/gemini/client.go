// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

// Package gemini calls the Gemini generateContent API in JSON mode.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash-lite"

// ErrNotConfigured is returned by every call when no API key is set.
var ErrNotConfigured = fmt.Errorf("%w: gemini api key not configured", models.ErrUpstreamUnavailable)

// Generator produces a JSON document from a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

var _ Generator = (*Client)(nil)

// Config configures Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string        // https://generativelanguage.googleapis.com
	Timeout time.Duration // 15s; callers usually set a tighter deadline
}

// Client is a thin generateContent client. It never retries.
type Client struct {
	http   *resty.Client
	model  string
	apiKey string
	logger zerolog.Logger
}

// NewClient creates a Gemini client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if cfg.APIKey != "" {
		rc.SetHeader("x-goog-api-key", cfg.APIKey)
	}

	return &Client{
		http:   rc,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		logger: logger.With().Str("component", "gemini").Logger(),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

// StatusError is a non-2xx generateContent response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini API error: %s", e.Status)
}

// Unwrap makes every StatusError match models.ErrUpstreamUnavailable.
func (e *StatusError) Unwrap() error {
	return models.ErrUpstreamUnavailable
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// GenerateJSON sends prompt with responseMimeType application/json and
// returns the text of the first candidate.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	start := time.Now()
	text, err := c.generate(ctx, prompt)
	metrics.RecordUpstream("gemini", "generate_content", time.Since(start), err)
	return text, err
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&body).
		SetPathParam("model", c.model).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("%w: gemini request: %w", models.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		raw := resp.String()
		if len(raw) > 512 {
			raw = raw[:512]
		}
		return "", &StatusError{StatusCode: resp.StatusCode(), Status: resp.Status(), Body: raw}
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: decode gemini response: %w", models.ErrUpstreamUnavailable, err)
	}
	if len(out.Candidates) == 0 {
		reason := "no candidates"
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			reason = "blocked: " + out.PromptFeedback.BlockReason
		}
		return "", fmt.Errorf("%w: gemini %s", models.ErrUpstreamUnavailable, reason)
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned empty text", models.ErrUpstreamUnavailable)
	}

	c.logger.Debug().
		Int("prompt_len", len(prompt)).
		Int("response_len", sb.Len()).
		Str("finish_reason", out.Candidates[0].FinishReason).
		Msg("Generated content")
	return sb.String(), nil
}

// IsClientError reports a 4xx other than 429.
func IsClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) &&
		se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
}

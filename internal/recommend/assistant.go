// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/metrics"
	"github.com/tomtom215/previouslyon/internal/models"
	"github.com/tomtom215/previouslyon/internal/validation"
)

// Prompt fallbacks.
const (
	NoBio   = "No bio available."
	NoLists = "No lists available."
)

// maxLoggedOutput bounds raw model text in debug logs.
const maxLoggedOutput = 512

// ContextSource reads the taste context for the prompt.
type ContextSource interface {
	ProfileBio(ctx context.Context, userID string) (string, error)
	RecentListsWithShows(ctx context.Context, userID string, n int) ([]models.ListSummary, error)
}

// Generator produces a JSON document from a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Assistant answers free-text recommendation queries.
type Assistant struct {
	source ContextSource
	model  Generator
	cfg    config.AssistantConfig
	logger zerolog.Logger
}

// NewAssistant creates an Assistant.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAssistant(source ContextSource, model Generator, cfg config.AssistantConfig, logger zerolog.Logger) *Assistant {
	if cfg.RecentLists <= 0 {
		cfg.RecentLists = 3
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 10 * time.Second
	}
	return &Assistant{
		source: source,
		model:  model,
		cfg:    cfg,
		logger: logger.With().Str("component", "assistant").Logger(),
	}
}

// Reply answers query for userID. It never returns an error; every failure
// yields models.DegradedAssistantResponse.
func (a *Assistant) Reply(ctx context.Context, userID, query string) models.AssistantResponse {
	log := a.logger.With().Str("user_id", userID).Int("query_len", len(query)).Logger()

	if userID == "" {
		log.Warn().Err(models.ErrUnauthenticated).Msg("Assistant called without a user")
		return a.degrade(metrics.OutcomeSkipped)
	}
	if strings.TrimSpace(query) == "" {
		log.Debug().Msg("Empty assistant query")
		return a.degrade(metrics.OutcomeSkipped)
	}

	bio, lists := a.loadContext(ctx, log, userID)
	prompt := BuildPrompt(bio, lists, query)

	modelCtx, cancel := context.WithTimeout(ctx, a.cfg.ModelTimeout)
	defer cancel()

	raw, err := a.model.GenerateJSON(modelCtx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("Assistant model call failed")
		return a.degrade(metrics.OutcomeFailure)
	}

	resp, err := ParseResponse(raw)
	if err != nil {
		log.Error().Err(err).Msg("Assistant returned unusable output")
		log.Debug().Str("raw", truncate(raw, maxLoggedOutput)).Msg("Raw model output")
		return a.degrade(metrics.OutcomeDegraded)
	}

	metrics.AssistantReplies.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info().Int("codes", len(resp.Codes)).Msg("Assistant replied")
	return resp
}

func (a *Assistant) degrade(outcome string) models.AssistantResponse {
	metrics.AssistantReplies.WithLabelValues(outcome).Inc()
	return models.DegradedAssistantResponse()
}

// loadContext reads the bio and recent lists. Read failures are logged and
// leave the corresponding fallback in place.
func (a *Assistant) loadContext(ctx context.Context, log zerolog.Logger, userID string) (string, []models.ListSummary) {
	bio, err := a.source.ProfileBio(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load bio for assistant")
		bio = ""
	}
	lists, err := a.source.RecentListsWithShows(ctx, userID, a.cfg.RecentLists)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load lists for assistant")
		lists = nil
	}
	return bio, lists
}

// BuildPrompt renders the assistant prompt. The query is embedded verbatim.
func BuildPrompt(bio string, lists []models.ListSummary, query string) string {
	if strings.TrimSpace(bio) == "" {
		bio = NoBio
	}
	listContext := RenderLists(lists)
	if listContext == "" {
		listContext = NoLists
	}

	var b strings.Builder
	b.WriteString("You are a personalized TV show assistant.\n\n")
	b.WriteString("User Context:\n")
	fmt.Fprintf(&b, "Bio: %s\n\n", bio)
	b.WriteString("User's Recently Created Lists (for taste context):\n")
	b.WriteString(listContext)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Current User Query: \"%s\"\n\n", query)
	b.WriteString("Based on the user's bio, their existing lists, and their specific query, recommend TV shows.\n\n")
	b.WriteString("Return a valid JSON object with exactly these two keys:\n")
	b.WriteString(`1. "response": A friendly, natural language response talking to the user, explaining why you picked these shows. Keep it concise but engaging.` + "\n")
	b.WriteString(`2. "codes": An array of TMDB TV Show IDs (integers) for the recommended shows. Ensure these are valid TMDB IDs.` + "\n\n")
	b.WriteString("Example Output:\n")
	b.WriteString(`{"response": "Since you like sci-fi, here are some great picks...", "codes": [123, 456, 789]}` + "\n")
	return b.String()
}

// RenderLists renders one `List "name": a, b` line per list.
func RenderLists(lists []models.ListSummary) string {
	lines := make([]string, 0, len(lists))
	for _, l := range lists {
		lines = append(lines, fmt.Sprintf("List \"%s\": %s", l.Name, strings.Join(l.ShowNames, ", ")))
	}
	return strings.Join(lines, "\n")
}

// StripCodeFences removes ```json and ``` markers and surrounding space.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// modelPayload mirrors the two required keys. Pointers distinguish a
// missing key from a zero value.
type modelPayload struct {
	Response *string `json:"response" validate:"required"`
	Codes    *[]int  `json:"codes" validate:"required"`
}

// ParseResponse strictly decodes model output. The payload must be a
// single JSON object with exactly the keys response (string) and codes
// (integer array, possibly empty). Errors wrap models.ErrMalformedModelOutput.
func ParseResponse(raw string) (models.AssistantResponse, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return models.AssistantResponse{}, fmt.Errorf("%w: empty output", models.ErrMalformedModelOutput)
	}

	if err := checkPayloadKeys(cleaned); err != nil {
		return models.AssistantResponse{}, fmt.Errorf("%w: %w", models.ErrMalformedModelOutput, err)
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()

	var p modelPayload
	if err := dec.Decode(&p); err != nil {
		return models.AssistantResponse{}, fmt.Errorf("%w: %w", models.ErrMalformedModelOutput, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return models.AssistantResponse{}, fmt.Errorf("%w: trailing data after object", models.ErrMalformedModelOutput)
	}
	if verr := validation.ValidateStruct(&p); verr != nil {
		return models.AssistantResponse{}, fmt.Errorf("%w: %w", models.ErrMalformedModelOutput, verr)
	}

	codes := *p.Codes
	if codes == nil {
		codes = []int{}
	}
	return models.AssistantResponse{Response: *p.Response, Codes: codes}, nil
}

// checkPayloadKeys requires the top-level keys to match the payload tags
// exactly and to appear once each. The struct decoder folds case and keeps
// the last duplicate, so neither is caught there.
func checkPayloadKeys(s string) error {
	dec := json.NewDecoder(strings.NewReader(s))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("output is not a JSON object")
	}

	seen := make(map[string]bool, 2)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("object key is not a string")
		}
		if key != "response" && key != "codes" {
			return fmt.Errorf("unexpected key %q", key)
		}
		if seen[key] {
			return fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = true

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

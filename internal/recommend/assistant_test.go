// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package recommend

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/previouslyon/internal/config"
	"github.com/tomtom215/previouslyon/internal/models"
)

type fakeContext struct {
	bio      string
	bioErr   error
	lists    []models.ListSummary
	listsErr error
	gotN     int
}

func (f *fakeContext) ProfileBio(context.Context, string) (string, error) {
	return f.bio, f.bioErr
}

func (f *fakeContext) RecentListsWithShows(_ context.Context, _ string, n int) ([]models.ListSummary, error) {
	f.gotN = n
	return f.lists, f.listsErr
}

type fakeModel struct {
	reply  string
	err    error
	calls  atomic.Int32
	prompt string
}

func (f *fakeModel) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.prompt = prompt
	if _, ok := ctx.Deadline(); !ok {
		return "", errors.New("missing model deadline")
	}
	return f.reply, f.err
}

func newTestAssistant(src ContextSource, model Generator) *Assistant {
	return NewAssistant(src, model, config.AssistantConfig{
		RecentLists:  3,
		ModelTimeout: time.Second,
	}, zerolog.Nop())
}

func TestAssistant_EndToEnd(t *testing.T) {
	t.Parallel()

	src := &fakeContext{
		bio:   "I love sci-fi",
		lists: []models.ListSummary{{Name: "Favs", ShowNames: []string{"Dark"}}},
	}
	model := &fakeModel{reply: `{"response":"Here are some shows","codes":[1,2,3]}`}
	a := newTestAssistant(src, model)

	got := a.Reply(context.Background(), "u1", "sci-fi shows")

	if got.Response != "Here are some shows" {
		t.Errorf("Response = %q", got.Response)
	}
	if len(got.Codes) != 3 || got.Codes[0] != 1 || got.Codes[2] != 3 {
		t.Errorf("Codes = %v", got.Codes)
	}
	for _, want := range []string{
		"I love sci-fi",
		`List "Favs": Dark`,
		`Current User Query: "sci-fi shows"`,
		`"response"`,
		`"codes"`,
	} {
		if !strings.Contains(model.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if src.gotN != 3 {
		t.Errorf("recent lists n = %d, want 3", src.gotN)
	}
}

func TestAssistant_FailClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID string
		query  string
	}{
		{"anonymous", "", "anything"},
		{"empty query", "u1", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			model := &fakeModel{reply: `{"response":"x","codes":[1]}`}
			a := newTestAssistant(&fakeContext{}, model)

			got := a.Reply(context.Background(), tt.userID, tt.query)
			if !got.IsDegraded() || got.Response != models.AssistantApology || got.Codes == nil {
				t.Errorf("got %+v, want degraded payload", got)
			}
			if n := model.calls.Load(); n != 0 {
				t.Errorf("model calls = %d, want 0", n)
			}
		})
	}
}

func TestAssistant_Degrades(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"invalid json", "Invalid JSON", nil},
		{"model error", "", models.ErrUpstreamUnavailable},
		{"missing codes", `{"response":"hi"}`, nil},
		{"codes not integers", `{"response":"hi","codes":["a","b"]}`, nil},
		{"codes not a list", `{"response":"hi","codes":5}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			model := &fakeModel{reply: tt.reply, err: tt.err}
			got := newTestAssistant(&fakeContext{}, model).Reply(context.Background(), "u1", "q")

			if !got.IsDegraded() || len(got.Codes) != 0 || got.Codes == nil {
				t.Errorf("got %+v, want degraded payload", got)
			}
			if n := model.calls.Load(); n != 1 {
				t.Errorf("model calls = %d, want exactly 1 (no retries)", n)
			}
		})
	}
}

func TestAssistant_ContextFallbacks(t *testing.T) {
	t.Parallel()

	src := &fakeContext{bioErr: errors.New("db"), listsErr: errors.New("db")}
	model := &fakeModel{reply: `{"response":"ok","codes":[]}`}

	got := newTestAssistant(src, model).Reply(context.Background(), "u1", "comedies")
	if got.IsDegraded() || got.Response != "ok" {
		t.Errorf("context failures should not degrade: %+v", got)
	}
	if !strings.Contains(model.prompt, NoBio) || !strings.Contains(model.prompt, NoLists) {
		t.Errorf("prompt should use fallbacks:\n%s", model.prompt)
	}
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantErr   bool
		wantCodes []int
		wantText  string
	}{
		{"plain", `{"response":"a","codes":[1,2]}`, false, []int{1, 2}, "a"},
		{"empty codes", `{"response":"a","codes":[]}`, false, []int{}, "a"},
		{"fenced", "```json\n{\"response\":\"a\",\"codes\":[7]}\n```", false, []int{7}, "a"},
		{"bare fence", "```\n{\"response\":\"a\",\"codes\":[7]}\n```", false, []int{7}, "a"},
		{"surrounding space", "  \n{\"response\":\"a\",\"codes\":[]}\n ", false, []int{}, "a"},
		{"not json", "Invalid JSON", true, nil, ""},
		{"empty", "", true, nil, ""},
		{"missing response", `{"codes":[1]}`, true, nil, ""},
		{"missing codes", `{"response":"a"}`, true, nil, ""},
		{"null codes", `{"response":"a","codes":null}`, true, nil, ""},
		{"string codes", `{"response":"a","codes":["1"]}`, true, nil, ""},
		{"float codes", `{"response":"a","codes":[1.5]}`, true, nil, ""},
		{"numeric response", `{"response":1,"codes":[]}`, true, nil, ""},
		{"extra key", `{"response":"a","codes":[],"note":"x"}`, true, nil, ""},
		{"array", `[1,2,3]`, true, nil, ""},
		{"key case differs", `{"Response":"a","CODES":[1]}`, true, nil, ""},
		{"duplicate codes", `{"response":"a","codes":[1],"codes":[2]}`, true, nil, ""},
		{"duplicate response", `{"response":"a","response":"b","codes":[]}`, true, nil, ""},
		{"trailing object", `{"response":"a","codes":[]}{"response":"b","codes":[]}`, true, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseResponse(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, models.ErrMalformedModelOutput) {
					t.Errorf("err = %v, want ErrMalformedModelOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResponse: %v", err)
			}
			if got.Response != tt.wantText || len(got.Codes) != len(tt.wantCodes) || got.Codes == nil {
				t.Errorf("got %+v", got)
			}
			for i := range tt.wantCodes {
				if got.Codes[i] != tt.wantCodes[i] {
					t.Errorf("codes = %v, want %v", got.Codes, tt.wantCodes)
				}
			}
		})
	}
}

func TestBuildPrompt_Defaults(t *testing.T) {
	t.Parallel()

	p := BuildPrompt("", nil, `say "hi"`)
	if !strings.Contains(p, "Bio: "+NoBio) {
		t.Error("missing bio fallback")
	}
	if !strings.Contains(p, NoLists) {
		t.Error("missing list fallback")
	}
	if !strings.Contains(p, `Current User Query: "say "hi""`) {
		t.Error("query should be embedded verbatim")
	}
}

func TestRenderLists(t *testing.T) {
	t.Parallel()

	got := RenderLists([]models.ListSummary{
		{Name: "Favs", ShowNames: []string{"Dark", "Severance"}},
		{Name: "Empty", ShowNames: []string{}},
	})
	want := "List \"Favs\": Dark, Severance\nList \"Empty\": "
	if got != want {
		t.Errorf("RenderLists() = %q, want %q", got, want)
	}
}

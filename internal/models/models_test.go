// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func intPtr(v int) *int { return &v }

func TestEntityTypeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		season  *int
		episode *int
		want    string
	}{
		{"show review", nil, nil, EntityShow},
		{"season review", intPtr(2), nil, EntitySeason},
		{"episode review", intPtr(2), intPtr(5), EntityEpisode},
		{"episode without season falls back to show", nil, intPtr(5), EntityShow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EntityTypeOf(tt.season, tt.episode); got != tt.want {
				t.Errorf("EntityTypeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActivityRecord_Resolved(t *testing.T) {
	t.Parallel()

	show := &ShowRef{ID: 1, Name: "Dark"}
	episode := &EpisodeRef{ID: 7, ShowID: 1, SeasonNumber: 1, EpisodeNumber: 1}

	tests := []struct {
		name   string
		record ActivityRecord
		want   bool
	}{
		{"show review with show", ActivityRecord{Show: show}, true},
		{"show review without show", ActivityRecord{}, false},
		{"watched with both", ActivityRecord{SeasonNumber: intPtr(1), EpisodeNumber: intPtr(1), Show: show, Episode: episode}, true},
		{"watched missing episode", ActivityRecord{SeasonNumber: intPtr(1), EpisodeNumber: intPtr(1), Show: show}, false},
		{"watched missing show", ActivityRecord{SeasonNumber: intPtr(1), EpisodeNumber: intPtr(1), Episode: episode}, false},
		{"season review needs no episode", ActivityRecord{SeasonNumber: intPtr(1), Show: show}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.record.Resolved(); got != tt.want {
				t.Errorf("Resolved() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShowRef_AirDate(t *testing.T) {
	t.Parallel()

	s := ShowRef{FirstAirDate: "2017-12-01"}
	got, ok := s.AirDate()
	if !ok {
		t.Fatal("expected date to parse")
	}
	if !got.Equal(time.Date(2017, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("AirDate() = %v", got)
	}

	for _, raw := range []string{"", "soon", "2017/12/01"} {
		s := ShowRef{FirstAirDate: raw}
		if _, ok := s.AirDate(); ok {
			t.Errorf("AirDate(%q) should not parse", raw)
		}
	}
}

func TestDegradedAssistantResponse_EncodesEmptyCodes(t *testing.T) {
	t.Parallel()

	resp := DegradedAssistantResponse()
	if !resp.IsDegraded() {
		t.Error("expected degraded payload to report IsDegraded")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"response":"` + AssistantApology + `","codes":[]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestNewActivityItem(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := ActivityRecord{
		Kind:          ActivityWatched,
		UserID:        "u1",
		ShowID:        1,
		SeasonNumber:  intPtr(1),
		EpisodeNumber: intPtr(3),
		OccurredAt:    at,
		Show:          &ShowRef{ID: 1, Name: "Dark"},
		Episode:       &EpisodeRef{ID: 9, Name: "Past and Present"},
	}

	item := NewActivityItem(&r, SourceFallback)
	if item.EntityType != EntityEpisode {
		t.Errorf("EntityType = %q, want episode", item.EntityType)
	}
	if item.Show.Name != "Dark" || item.Episode.ID != 9 {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.Source != SourceFallback || !item.OccurredAt.Equal(at) {
		t.Errorf("unexpected source/time: %+v", item)
	}
}

func TestEpisodePlaceholderName(t *testing.T) {
	t.Parallel()

	if got := EpisodePlaceholderName(2, 10); got != "S2 E10" {
		t.Errorf("EpisodePlaceholderName() = %q", got)
	}
}

// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/previouslyon/internal/models"
)

func TestValidator_Shared(t *testing.T) {
	t.Parallel()

	if Validator() != Validator() {
		t.Error("Validator() should return the same instance")
	}
}

type queryRequest struct {
	Query string `json:"query" validate:"required,max=10"`
	Tags  []int  `json:"tags,omitempty" validate:"omitempty,max=2,dive,gt=0"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     any
		wantField string
		wantMsg   string
	}{
		{"valid", &queryRequest{Query: "sci-fi"}, "", ""},
		{"missing query", &queryRequest{}, "query", "query is required"},
		{"query too long", &queryRequest{Query: strings.Repeat("x", 11)}, "query", "query must have at most 10 characters"},
		{"too many tags", &queryRequest{Query: "a", Tags: []int{1, 2, 3}}, "tags", "tags must have at most 2 items"},
		{"bad tag", &queryRequest{Query: "a", Tags: []int{0}}, "tags[0]", "tags[0] must be greater than 0"},
		{
			"track action",
			&models.TrackRequest{Action: "rewatch", ShowID: 1, EpisodeID: 2},
			"action", "action must be one of: watch unwatch",
		},
		{
			"track negative show",
			&models.TrackRequest{Action: "watch", ShowID: -4, EpisodeID: 2},
			"show_id", "show_id must be a valid TMDB ID",
		},
		{
			"discover sort",
			&models.DiscoverFilters{SortBy: "name.asc"},
			"sort_by", "sort_by must be one of: popularity.desc vote_average.desc first_air_date.desc",
		},
		{
			"discover uppercase language",
			&models.DiscoverFilters{OriginalLanguage: "DE"},
			"original_language", "original_language must be a two-letter lowercase language code",
		},
		{
			"discover genre zero",
			&models.DiscoverFilters{GenreIDs: []int{18, 0}},
			"genre_ids[1]", "genre_ids[1] must be a valid TMDB ID",
		},
		{"discover year", &models.DiscoverFilters{FirstAirYear: 1066}, "first_air_year", "first_air_year must be at least 1900"},
		{"discover ok", &models.DiscoverFilters{GenreIDs: []int{18}, FirstAirYear: 2019, OriginalLanguage: "ko", Page: 2}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			first := verr.Fields[0]
			if first.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", first.Field, tt.wantField)
			}
			if first.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", first.Message, tt.wantMsg)
			}
		})
	}
}

func TestFailure_Envelope(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&queryRequest{})
	if single.Message() != "query is required" {
		t.Errorf("Message() = %q", single.Message())
	}
	fields, ok := single.Details()["fields"].([]FieldError)
	if !ok || len(fields) != 1 || fields[0].Rule != "required" {
		t.Errorf("Details() = %v", single.Details())
	}

	multi := ValidateStruct(&models.TrackRequest{})
	if len(multi.Fields) < 3 {
		t.Fatalf("expected action, show_id and episode_id failures, got %v", multi.Fields)
	}
	if !strings.Contains(multi.Message(), "; ") {
		t.Errorf("multi-field message should be joined: %q", multi.Message())
	}

	if got := (&Failure{}).Message(); got != "Validation failed" {
		t.Errorf("empty Message() = %q", got)
	}
}

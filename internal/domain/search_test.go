package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequest_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   SearchRequest
		want SearchRequest
	}{
		{
			name: "topic trimmed lowercased collapsed",
			in:   SearchRequest{Topic: "  Note   Taking ", TimeRange: TimeRangeWeek, SortBy: SortByUpvotes},
			want: SearchRequest{Topic: "note taking", TimeRange: TimeRangeWeek, SortBy: SortByUpvotes},
		},
		{
			name: "tags sorted and deduped",
			in: SearchRequest{
				Topic:     "x y",
				Tags:      []SourceTag{SourceTagShowHN, SourceTagAskHN, SourceTagShowHN},
				TimeRange: TimeRangeAll,
				SortBy:    SortByRecency,
			},
			want: SearchRequest{
				Topic:     "x y",
				Tags:      []SourceTag{SourceTagAskHN, SourceTagShowHN},
				TimeRange: TimeRangeAll,
				SortBy:    SortByRecency,
			},
		},
		{
			name: "empty enums defaulted",
			in:   SearchRequest{Topic: "ab"},
			want: SearchRequest{Topic: "ab", TimeRange: TimeRangeMonth, SortBy: SortByRelevance},
		},
		{
			name: "min upvotes capped and floored",
			in:   SearchRequest{Topic: "ab", TimeRange: TimeRangeAll, SortBy: SortByRelevance, MinUpvotes: 9999},
			want: SearchRequest{Topic: "ab", TimeRange: TimeRangeAll, SortBy: SortByRelevance, MinUpvotes: MaxMinUpvotes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := SearchRequest{
		Topic:      "database scalability",
		Tags:       []SourceTag{SourceTagAskHN},
		TimeRange:  TimeRangeMonth,
		MinUpvotes: 10,
		SortBy:     SortByRelevance,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *SearchRequest)
		field  string
	}{
		{"topic too short", func(r *SearchRequest) { r.Topic = "a" }, "topic"},
		{"topic too long", func(r *SearchRequest) { r.Topic = strings.Repeat("x", TopicMaxLen+1) }, "topic"},
		{"too many tags", func(r *SearchRequest) {
			r.Tags = make([]SourceTag, MaxTags+1)
			for i := range r.Tags {
				r.Tags[i] = SourceTagStory
			}
		}, "tags"},
		{"unknown tag", func(r *SearchRequest) { r.Tags = []SourceTag{"reddit"} }, "tags"},
		{"bad time range", func(r *SearchRequest) { r.TimeRange = "decade" }, "timeRange"},
		{"negative upvotes", func(r *SearchRequest) { r.MinUpvotes = -1 }, "minUpvotes"},
		{"bad sort", func(r *SearchRequest) { r.SortBy = "random" }, "sortBy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := valid
			tt.mutate(&req)

			err := req.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, ErrValidation)

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a %s field error, got %v", tt.field, verr.Errors)
		})
	}
}

func TestSearchStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, SearchStatusPending.IsTerminal())
	assert.False(t, SearchStatusProcessing.IsTerminal())
	assert.True(t, SearchStatusCompleted.IsTerminal())
	assert.True(t, SearchStatusFailed.IsTerminal())

	assert.True(t, SearchStatusPending.IsValid())
	assert.False(t, SearchStatus("queued").IsValid())
}

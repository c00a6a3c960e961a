package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchKey_StableUnderTagOrderAndCasing(t *testing.T) {
	t.Parallel()

	a := SearchRequest{
		Topic:      "  Database   Scalability ",
		Tags:       []SourceTag{SourceTagShowHN, SourceTagAskHN},
		TimeRange:  TimeRangeMonth,
		MinUpvotes: 10,
		SortBy:     SortByRelevance,
	}
	b := SearchRequest{
		Topic:      "database scalability",
		Tags:       []SourceTag{SourceTagAskHN, SourceTagShowHN},
		TimeRange:  TimeRangeMonth,
		MinUpvotes: 10,
		SortBy:     SortByRelevance,
	}

	assert.Equal(t, BuildSearchKey(a), BuildSearchKey(b))
}

func TestBuildSearchKey_Deterministic(t *testing.T) {
	t.Parallel()

	req := SearchRequest{
		Topic:      "note taking apps",
		Tags:       []SourceTag{SourceTagAskHN},
		TimeRange:  TimeRangeYear,
		MinUpvotes: 25,
		SortBy:     SortByUpvotes,
	}

	first := BuildSearchKey(req)
	for range 10 {
		assert.Equal(t, first, BuildSearchKey(req))
	}
}

func TestBuildSearchKey_DistinctRequestsDiffer(t *testing.T) {
	t.Parallel()

	base := SearchRequest{
		Topic:      "database scalability",
		Tags:       []SourceTag{SourceTagAskHN},
		TimeRange:  TimeRangeMonth,
		MinUpvotes: 10,
		SortBy:     SortByRelevance,
	}

	variants := []SearchRequest{
		{Topic: "database scaling", Tags: base.Tags, TimeRange: base.TimeRange, MinUpvotes: base.MinUpvotes, SortBy: base.SortBy},
		{Topic: base.Topic, Tags: []SourceTag{SourceTagShowHN}, TimeRange: base.TimeRange, MinUpvotes: base.MinUpvotes, SortBy: base.SortBy},
		{Topic: base.Topic, Tags: base.Tags, TimeRange: TimeRangeWeek, MinUpvotes: base.MinUpvotes, SortBy: base.SortBy},
		{Topic: base.Topic, Tags: base.Tags, TimeRange: base.TimeRange, MinUpvotes: 11, SortBy: base.SortBy},
		{Topic: base.Topic, Tags: base.Tags, TimeRange: base.TimeRange, MinUpvotes: base.MinUpvotes, SortBy: SortByRecency},
	}

	baseKey := BuildSearchKey(base)
	seen := map[string]bool{baseKey: true}
	for _, v := range variants {
		key := BuildSearchKey(v)
		require.False(t, seen[key], "collision for %+v", v)
		seen[key] = true
	}
}

func TestBuildSearchKey_DuplicateTagsCollapse(t *testing.T) {
	t.Parallel()

	a := SearchRequest{Topic: "ci pipelines", Tags: []SourceTag{SourceTagAskHN, SourceTagAskHN}, TimeRange: TimeRangeAll, SortBy: SortByRelevance}
	b := SearchRequest{Topic: "ci pipelines", Tags: []SourceTag{SourceTagAskHN}, TimeRange: TimeRangeAll, SortBy: SortByRelevance}

	assert.Equal(t, BuildSearchKey(a), BuildSearchKey(b))
}

package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request field limits.
const (
	TopicMinLen   = 2
	TopicMaxLen   = 100
	MaxTags       = 10
	MaxMinUpvotes = 500
)

// SearchRequest is the user-facing input: a topic plus source filters.
// It is never persisted as-is; Normalize derives the canonical form used
// for persistence and key derivation.
type SearchRequest struct {
	Topic      string      `json:"topic"`
	Tags       []SourceTag `json:"tags"`
	TimeRange  TimeRange   `json:"timeRange"`
	MinUpvotes int         `json:"minUpvotes"`
	SortBy     SortBy      `json:"sortBy"`
}

// Normalize returns the canonical form of the request: topic lowercased with
// collapsed whitespace, tags lowercased, deduplicated and sorted, enum fields
// defaulted when empty, and MinUpvotes capped. Two requests differing only in
// tag order or topic casing/whitespace normalize identically.
func (r SearchRequest) Normalize() SearchRequest {
	n := SearchRequest{
		Topic:      NormalizeText(r.Topic),
		TimeRange:  r.TimeRange,
		MinUpvotes: r.MinUpvotes,
		SortBy:     r.SortBy,
	}

	if n.TimeRange == "" {
		n.TimeRange = TimeRangeMonth
	}
	if n.SortBy == "" {
		n.SortBy = SortByRelevance
	}
	if n.MinUpvotes < 0 {
		n.MinUpvotes = 0
	}
	if n.MinUpvotes > MaxMinUpvotes {
		n.MinUpvotes = MaxMinUpvotes
	}

	seen := make(map[SourceTag]struct{}, len(r.Tags))
	for _, t := range r.Tags {
		tag := SourceTag(strings.ToLower(strings.TrimSpace(string(t))))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		n.Tags = append(n.Tags, tag)
	}
	slices.Sort(n.Tags)

	return n
}

// Validate checks the request against its input contract. It is meant to be
// called on the normalized form, before any side effect occurs.
func (r SearchRequest) Validate() error {
	var errs []FieldError

	if l := len([]rune(r.Topic)); l < TopicMinLen || l > TopicMaxLen {
		errs = append(errs, FieldError{
			Field:   "topic",
			Message: fmt.Sprintf("must be %d-%d characters", TopicMinLen, TopicMaxLen),
		})
	}
	if len(r.Tags) > MaxTags {
		errs = append(errs, FieldError{
			Field:   "tags",
			Message: fmt.Sprintf("at most %d tags allowed", MaxTags),
		})
	}
	for _, t := range r.Tags {
		if !t.IsValid() {
			errs = append(errs, FieldError{
				Field:   "tags",
				Message: fmt.Sprintf("unknown source tag %q", t),
			})
		}
	}
	if !r.TimeRange.IsValid() {
		errs = append(errs, FieldError{Field: "timeRange", Message: "must be one of week, month, year, all"})
	}
	if r.MinUpvotes < 0 {
		errs = append(errs, FieldError{Field: "minUpvotes", Message: "must be non-negative"})
	}
	if !r.SortBy.IsValid() {
		errs = append(errs, FieldError{Field: "sortBy", Message: "must be one of relevance, upvotes, recency"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// Search is the persisted search row. The orchestration layer reads and
// writes only this narrow slice; the worker owns the transition to a
// terminal status and the normalized result tables.
type Search struct {
	ID           uuid.UUID
	Status       SearchStatus
	Topic        string
	Tags         []SourceTag
	TimeRange    TimeRange
	MinUpvotes   int
	SortBy       SortBy
	ErrorMessage *string
	CreatedAt    time.Time
}

// StatusRow is the narrow status projection of a search row.
type StatusRow struct {
	ID           uuid.UUID
	Status       SearchStatus
	ErrorMessage *string
}

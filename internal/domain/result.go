package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PainPoint is one recurring problem surfaced by the analyzer.
type PainPoint struct {
	ID       uuid.UUID `json:"id"        validate:"required"`
	SearchID uuid.UUID `json:"searchId"  validate:"required"`
	Title    string    `json:"title"     validate:"required"`
	Tag      SourceTag `json:"tag"       validate:"required,oneof=ask_hn show_hn launch_hn story comment poll"`
	Mentions int       `json:"mentions"  validate:"gte=0"`
	Severity *float64  `json:"severity,omitempty" validate:"omitempty,gte=0,lte=10"`
}

// Quote is a verbatim source excerpt backing a pain point.
type Quote struct {
	ID          uuid.UUID `json:"id"          validate:"required"`
	PainPointID uuid.UUID `json:"painPointId" validate:"required"`
	Text        string    `json:"text"        validate:"required"`
	Author      string    `json:"author"`
	Upvotes     int       `json:"upvotes"     validate:"gte=0"`
	Permalink   string    `json:"permalink"`
}

// Analysis is the optional LLM summary attached to a completed result.
type Analysis struct {
	Summary      string   `json:"summary"`
	Problems     []string `json:"problems,omitempty"`
	ProductIdeas []string `json:"productIdeas,omitempty"`
	Model        string   `json:"model,omitempty"`
	TokensUsed   int      `json:"tokensUsed" validate:"gte=0"`
}

// SearchResult is the unit cached and returned to callers. A result with a
// non-completed status carries no pain points, quotes, or analysis; that
// shape is enforced by Validate on every cache write and read-back.
type SearchResult struct {
	SearchID   uuid.UUID    `json:"searchId"   validate:"required"`
	Status     SearchStatus `json:"status"     validate:"required,oneof=pending processing completed failed"`
	Topic      string       `json:"topic"      validate:"required"`
	Tags       []SourceTag  `json:"tags"`
	TimeRange  TimeRange    `json:"timeRange"  validate:"required,oneof=week month year all"`
	MinUpvotes int          `json:"minUpvotes" validate:"gte=0"`
	SortBy     SortBy       `json:"sortBy"     validate:"required,oneof=relevance upvotes recency"`

	TotalPainPoints int         `json:"totalPainPoints" validate:"gte=0"`
	TotalQuotes     int         `json:"totalQuotes"     validate:"gte=0"`
	PainPoints      []PainPoint `json:"painPoints"      validate:"dive"`
	Quotes          []Quote     `json:"quotes"          validate:"dive"`
	Analysis        *Analysis   `json:"analysis,omitempty"`

	ErrorMessage string `json:"errorMessage,omitempty"`
}

var resultValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the result against the shape contract. Both the cache layer
// and the assembly path run it, so a payload read back from the cache must
// satisfy the same contract that held when it was written.
func (r *SearchResult) Validate() error {
	if err := resultValidator.Struct(r); err != nil {
		return fmt.Errorf("result shape: %w", err)
	}

	if r.Status != SearchStatusCompleted {
		if len(r.PainPoints) > 0 || len(r.Quotes) > 0 || r.Analysis != nil {
			return fmt.Errorf("result shape: status %q must not carry analysis payload", r.Status)
		}
	}
	if r.Status != SearchStatusFailed && r.ErrorMessage != "" {
		return fmt.Errorf("result shape: error message on non-failed result")
	}
	return nil
}

// NewPendingResult builds the acknowledgment view of a search that has not
// reached a terminal state.
func NewPendingResult(s *Search) *SearchResult {
	return &SearchResult{
		SearchID:   s.ID,
		Status:     s.Status,
		Topic:      s.Topic,
		Tags:       s.Tags,
		TimeRange:  s.TimeRange,
		MinUpvotes: s.MinUpvotes,
		SortBy:     s.SortBy,
	}
}

// NewFailedResult synthesizes the terminal view of a failed search: the
// stored error message with all list fields empty.
func NewFailedResult(s *Search, errorMessage string) *SearchResult {
	r := NewPendingResult(s)
	r.Status = SearchStatusFailed
	r.ErrorMessage = errorMessage
	return r
}

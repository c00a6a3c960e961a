package domain

// SearchStatus represents the lifecycle state of a search.
// A search is created as PENDING, promoted to PROCESSING once the analyzer
// has been triggered, and finished as COMPLETED or FAILED by the worker.
// Terminal states never transition backward.
type SearchStatus string

const (
	SearchStatusPending    SearchStatus = "pending"
	SearchStatusProcessing SearchStatus = "processing"
	SearchStatusCompleted  SearchStatus = "completed"
	SearchStatusFailed     SearchStatus = "failed"
)

func (s SearchStatus) String() string { return string(s) }

func (s SearchStatus) IsValid() bool {
	switch s {
	case SearchStatusPending, SearchStatusProcessing, SearchStatusCompleted, SearchStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status can no longer change.
func (s SearchStatus) IsTerminal() bool {
	return s == SearchStatusCompleted || s == SearchStatusFailed
}

// TimeRange restricts how far back source discussions are considered.
type TimeRange string

const (
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeYear  TimeRange = "year"
	TimeRangeAll   TimeRange = "all"
)

func (t TimeRange) String() string { return string(t) }

func (t TimeRange) IsValid() bool {
	switch t {
	case TimeRangeWeek, TimeRangeMonth, TimeRangeYear, TimeRangeAll:
		return true
	}
	return false
}

// SortBy selects the ordering of pain points in a completed result.
type SortBy string

const (
	SortByRelevance SortBy = "relevance"
	SortByUpvotes   SortBy = "upvotes"
	SortByRecency   SortBy = "recency"
)

func (s SortBy) String() string { return string(s) }

func (s SortBy) IsValid() bool {
	switch s {
	case SortByRelevance, SortByUpvotes, SortByRecency:
		return true
	}
	return false
}

// SourceTag identifies the kind of source discussion a request is scoped to.
type SourceTag string

const (
	SourceTagAskHN    SourceTag = "ask_hn"
	SourceTagShowHN   SourceTag = "show_hn"
	SourceTagLaunchHN SourceTag = "launch_hn"
	SourceTagStory    SourceTag = "story"
	SourceTagComment  SourceTag = "comment"
	SourceTagPoll     SourceTag = "poll"
)

func (t SourceTag) String() string { return string(t) }

func (t SourceTag) IsValid() bool {
	switch t {
	case SourceTagAskHN, SourceTagShowHN, SourceTagLaunchHN, SourceTagStory, SourceTagComment, SourceTagPoll:
		return true
	}
	return false
}

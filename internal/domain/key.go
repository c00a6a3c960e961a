package domain

import (
	"fmt"
	"strings"
)

// BuildSearchKey derives the canonical cache/dedup key for a request.
//
// The function is pure, total, and deterministic: it normalizes the request
// first, so any two requests that differ only in tag ordering or topic
// casing/whitespace yield the same key, while requests differing in any
// filter field never collide. The enum and numeric fields are embedded
// verbatim; the topic occupies the final position so its free text cannot
// shadow another field.
func BuildSearchKey(r SearchRequest) string {
	n := r.Normalize()

	tags := make([]string, len(n.Tags))
	for i, t := range n.Tags {
		tags[i] = string(t)
	}

	return fmt.Sprintf("range=%s|minup=%d|sort=%s|tags=%s|topic=%s",
		n.TimeRange, n.MinUpvotes, n.SortBy, strings.Join(tags, ","), n.Topic)
}

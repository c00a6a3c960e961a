package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/painradar/painradar-backend/internal/domain"
)

// searchService defines the minimal interface needed by SearchHandler.
type searchService interface {
	Submit(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
	Status(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error)
}

// SearchHandler serves the search REST endpoints.
type SearchHandler struct {
	svc searchService
	log *slog.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(svc searchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, log: logger.With("handler", "search")}
}

type searchRequest struct {
	Topic      string   `json:"topic"`
	Tags       []string `json:"tags"`
	TimeRange  string   `json:"timeRange"`
	MinUpvotes int      `json:"minUpvotes"`
	SortBy     string   `json:"sortBy"`
}

type errorResponse struct {
	Error   string              `json:"error"`
	Code    string              `json:"code,omitempty"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// Submit handles POST /api/search. A completed or failed search answers
// with 200; a search still running when the wait budget expires answers
// with 202 and a body the client can poll against.
func (h *SearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tags := make([]domain.SourceTag, 0, len(req.Tags))
	for _, t := range req.Tags {
		tags = append(tags, domain.SourceTag(t))
	}

	result, err := h.svc.Submit(r.Context(), domain.SearchRequest{
		Topic:      req.Topic,
		Tags:       tags,
		TimeRange:  domain.TimeRange(req.TimeRange),
		MinUpvotes: req.MinUpvotes,
		SortBy:     domain.SortBy(req.SortBy),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, resultStatusCode(result), result)
}

// Status handles GET /api/search/{id}.
func (h *SearchHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid search id")
		return
	}

	result, err := h.svc.Status(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, resultStatusCode(result), result)
}

func resultStatusCode(result *domain.SearchResult) int {
	if result.Status.IsTerminal() {
		return http.StatusOK
	}
	return http.StatusAccepted
}

func (h *SearchHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr *domain.ValidationError
		rlErr  *domain.RateLimitError
	)
	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation failed",
			Details: valErr.Errors,
		})
	case errors.As(err, &rlErr):
		retryAfter := int(math.Ceil(rlErr.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error: "rate limit exceeded, retry after " + strconv.Itoa(retryAfter) + "s",
			Code:  "RATE_LIMITED_" + strings.ToUpper(string(rlErr.Scope)),
		})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "search not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

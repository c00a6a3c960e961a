// Package worker triggers the external scrape-and-analyze job. The worker
// is a black box: it is expected to eventually move the search row to a
// terminal status and populate the result tables, and to absorb repeated
// triggers for the same search id.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/painradar/painradar-backend/internal/config"
)

// Client issues trigger calls to the analyzer endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client from config.
func NewClient(cfg config.SearchConfig, logger *slog.Logger) *Client {
	return NewClientWithURL(cfg.WorkerURL, cfg.TriggerTimeout, logger)
}

// NewClientWithURL creates a Client with an explicit endpoint and timeout
// (for testing).
func NewClientWithURL(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "worker"),
	}
}

type triggerRequest struct {
	SearchID uuid.UUID `json:"searchId"`
}

// Trigger sends one analyze request for the given search id and reports
// whether the request was delivered. It never waits for the job itself:
// the call returns as soon as the worker acknowledges (or the timeout
// fires). Failures are logged, not propagated: a lost trigger degrades
// to pickup by the backend scheduler, never to a failed user request.
func (c *Client) Trigger(ctx context.Context, searchID uuid.UUID) bool {
	body, err := json.Marshal(triggerRequest{SearchID: searchID})
	if err != nil {
		c.log.ErrorContext(ctx, "marshal trigger request",
			slog.String("search_id", searchID.String()),
			slog.String("error", err.Error()),
		)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.log.ErrorContext(ctx, "create trigger request",
			slog.String("search_id", searchID.String()),
			slog.String("error", err.Error()),
		)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WarnContext(ctx, "trigger request failed",
			slog.String("search_id", searchID.String()),
			slog.String("error", err.Error()),
		)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WarnContext(ctx, "trigger rejected",
			slog.String("search_id", searchID.String()),
			slog.Int("status", resp.StatusCode),
		)
		return false
	}

	c.log.DebugContext(ctx, "trigger sent",
		slog.String("search_id", searchID.String()),
	)
	return true
}

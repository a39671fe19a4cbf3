package coachapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"trainload/internal/analysis"
)

// Client is a coaching API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a client for baseURL authenticated by tokenSource.
// A nil tokenSource sends unauthenticated requests.
func NewClient(baseURL string, tokenSource oauth2.TokenSource) *Client {
	httpClient := http.DefaultClient
	if tokenSource != nil {
		httpClient = oauth2.NewClient(context.Background(), tokenSource)
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(),
	}
}

// ListSessions fetches one page of sessions completed after 'after'
func (c *Client) ListSessions(ctx context.Context, after time.Time, page, perPage int) ([]Session, error) {
	params := url.Values{}
	if !after.IsZero() {
		params.Set("completed_after", after.UTC().Format(time.RFC3339))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var sessions []Session
	if err := c.getJSON(ctx, "/athletes/me/sessions", params, &sessions); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// ListTrainingLoads fetches the per-session load feed for days in [from, to]
func (c *Client) ListTrainingLoads(ctx context.Context, from, to time.Time) ([]analysis.LoadRecord, error) {
	params := url.Values{}
	params.Set("from", from.Format(analysis.DateLayout))
	params.Set("to", to.Format(analysis.DateLayout))

	var records []analysis.LoadRecord
	if err := c.getJSON(ctx, "/athletes/me/training-loads", params, &records); err != nil {
		return nil, fmt.Errorf("listing training loads: %w", err)
	}
	return records, nil
}

// RateLimitStatus returns the remaining requests in each window
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

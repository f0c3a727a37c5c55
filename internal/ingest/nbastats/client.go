// Package nbastats fetches player game logs from the Fortuna stats proxy,
// which relays the NBA stats upstream. The upstream rate-limits
// aggressively, so every call path runs through the shared bounded-retry
// policy, honors server retry hints, and paces sequential requests.
package nbastats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna/apollo/internal/model"
	"github.com/fortuna/apollo/internal/retry"
	"github.com/fortuna/apollo/internal/season"
	"github.com/fortuna/apollo/internal/teams"
)

const (
	// DefaultBaseURL points at the production stats proxy.
	DefaultBaseURL = "https://stats.fortuna.gg"

	defaultMaxAttempts = 4
	defaultPacing      = 250 * time.Millisecond

	// maxPages is the runaway guard when following pagination.
	maxPages = 50

	maxBodyBytes = 4 << 20
)

// Client fetches game logs and resolves player identifiers.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	log         zerolog.Logger
	cal         season.Calendar
	maxAttempts int
	pacing      time.Duration

	rateLimitBackoff func(attempt int, err error) time.Duration
	transientBackoff func(attempt int, err error) time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a client against the given proxy base URL.
func NewClient(baseURL string, cal season.Calendar, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		httpClient:       &http.Client{Timeout: 15 * time.Second},
		log:              log.With().Str("component", "nbastats").Logger(),
		cal:              cal,
		maxAttempts:      defaultMaxAttempts,
		pacing:           defaultPacing,
		rateLimitBackoff: retry.Ladder(0, time.Second, 2*time.Second, 5*time.Second, 10*time.Second),
		transientBackoff: retry.Linear(time.Second),
	}
}

// FetchSeasonLog fetches the full game log for one (player, season year,
// game type) window, following pagination until nextPage is absent.
func (c *Client) FetchSeasonLog(ctx context.Context, playerID int64, seasonYear int, gameType model.GameType) ([]model.GameLogEntry, error) {
	var entries []model.GameLogEntry

	page := 0
	for i := 0; i < maxPages; i++ {
		resp, err := c.fetchPage(ctx, playerID, seasonYear, gameType, page)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ParseRows(resp.Rows, c.log)...)
		if resp.NextPage == nil {
			return entries, nil
		}
		page = *resp.NextPage
	}

	c.log.Warn().
		Int64("player_id", playerID).
		Int("season", seasonYear).
		Msg("game-log pagination hit the page cap")
	return entries, nil
}

// ResolvePlayer resolves a display name (plus optional team hint) to the
// stable upstream player ID.
func (c *Client) ResolvePlayer(ctx context.Context, name, teamHint string) (int64, error) {
	q := url.Values{}
	q.Set("q", name)
	hint := teams.Normalize(teamHint)
	if hint != "" {
		q.Set("team", hint)
	}
	rawURL := fmt.Sprintf("%s/api/v1/players/search?%s", c.baseURL, q.Encode())

	hits, err := retry.Do(ctx, c.policy(), func(ctx context.Context) ([]playerHit, error) {
		if err := c.pace(ctx); err != nil {
			return nil, err
		}
		return c.doSearch(ctx, rawURL)
	})
	if err != nil {
		return 0, err
	}

	want := NormalizeName(name)
	var firstNameMatch int64
	for _, hit := range hits {
		if NormalizeName(hit.Name) != want {
			continue
		}
		if hint != "" && teams.Normalize(hit.Team) == hint {
			return hit.ID, nil
		}
		if firstNameMatch == 0 {
			firstNameMatch = hit.ID
		}
	}
	if firstNameMatch != 0 {
		return firstNameMatch, nil
	}
	if len(hits) == 1 {
		return hits[0].ID, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
}

func (c *Client) fetchPage(ctx context.Context, playerID int64, seasonYear int, gameType model.GameType, page int) (*pageResponse, error) {
	rawURL := fmt.Sprintf("%s/api/v1/players/%d/gamelog?season=%s&type=%s&page=%d",
		c.baseURL, playerID, url.QueryEscape(c.cal.Label(seasonYear)), gameType, page)

	return retry.Do(ctx, c.policy(), func(ctx context.Context) (*pageResponse, error) {
		if err := c.pace(ctx); err != nil {
			return nil, err
		}
		return c.doFetch(ctx, rawURL)
	})
}

// policy is the shared bounded-retry policy: ladder backoff on rate limits
// (deferring to the server hint when present), linear backoff otherwise.
func (c *Client) policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.maxAttempts,
		Retryable:   retryable,
		Backoff: func(attempt int, err error) time.Duration {
			var rle *RateLimitError
			if errors.As(err, &rle) {
				if rle.RetryAfter > 0 {
					return rle.RetryAfter
				}
				return c.rateLimitBackoff(attempt, err)
			}
			return c.transientBackoff(attempt, err)
		},
	}
}

func (c *Client) doFetch(ctx context.Context, rawURL string) (*pageResponse, error) {
	status, body, header, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var page pageResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding game-log response: %w", err)
		}
		return &page, nil
	case http.StatusTooManyRequests:
		// The upstream sometimes serves a stale payload alongside the 429.
		// Prefer it over burning another attempt.
		var page pageResponse
		if err := json.Unmarshal(body, &page); err == nil && len(page.Rows) > 0 {
			c.log.Warn().Str("url", rawURL).Msg("rate limited, salvaged payload from 429 response")
			return &page, nil
		}
		return nil, &RateLimitError{RetryAfter: retryAfter(header)}
	default:
		return nil, &UpstreamError{Status: status}
	}
}

func (c *Client) doSearch(ctx context.Context, rawURL string) ([]playerHit, error) {
	status, body, header, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decoding search response: %w", err)
		}
		return resp.Players, nil
	case http.StatusTooManyRequests:
		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err == nil && len(resp.Players) > 0 {
			return resp.Players, nil
		}
		return nil, &RateLimitError{RetryAfter: retryAfter(header)}
	default:
		return nil, &UpstreamError{Status: status}
	}
}

// get performs one HTTP GET and returns the status, body, and headers. Only
// transport failures are errors here; status handling is the caller's.
func (c *Client) get(ctx context.Context, rawURL string) (int, []byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, resp.Header, nil
}

// pace enforces the minimum interval between sequential upstream calls to
// pre-empt rate limiting rather than only reacting to it.
func (c *Client) pace(ctx context.Context) error {
	if c.pacing <= 0 {
		return ctx.Err()
	}

	c.mu.Lock()
	now := time.Now()
	var wait time.Duration
	if !c.lastRequest.IsZero() {
		if elapsed := now.Sub(c.lastRequest); elapsed < c.pacing {
			wait = c.pacing - elapsed
		}
	}
	c.lastRequest = now.Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

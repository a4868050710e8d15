// Package gamestore provides a resilient client for the remote append-only
// match record store
package gamestore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	perr "atlasmeta/internal/platform/errors"
	"atlasmeta/internal/platform/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUA        = "atlasmeta-pipeline"
	defaultMaxRetry  = 5
	defaultRetryBase = 500 * time.Millisecond
	defaultPageSize  = 500
)

// Options configures the Client
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration

	// Records per list request
	PageSize int
}

// Item is one record as the store returns it: its monotonically increasing
// ID plus the untouched document
type Item struct {
	ID     uint64          `json:"id"`
	Record json.RawMessage `json:"record"`
}

// listPage is the wire shape of one list response
type listPage struct {
	Items   []Item `json:"items"`
	HasMore bool   `json:"has_more"`
}

// Client pages through the store with bounded retries on transient failures
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("gamestore"),
		sleep: time.Sleep,
	}
}

// List fetches one page of records with IDs strictly greater than after
func (c *Client) List(ctx context.Context, after uint64) ([]Item, bool, error) {
	url := fmt.Sprintf("%s/games?after=%d&limit=%d", c.opts.BaseURL, after, c.opts.PageSize)

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, false, perr.Wrapf(err, perr.ErrorCodeUnknown, "gamestore new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if c.opts.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "gamestore do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("gamestore transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var page listPage
			err := json.NewDecoder(resp.Body).Decode(&page)
			_ = drainAndClose(resp.Body)
			if err != nil {
				return nil, false, perr.Wrapf(err, perr.ErrorCodeJSON, "gamestore decode page after=%d", after)
			}
			return page.Items, page.HasMore, nil

		case http.StatusTooManyRequests:
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, false, perr.Newf(perr.ErrorCodeTooManyRequests, "gamestore rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("gamestore rate limited backing off")
			c.sleep(wait)
			attempts++
			continue

		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return nil, false, perr.Newf(perr.ErrorCodeUnavailable, "gamestore transient server error")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("gamestore transient error retrying")
			c.sleep(back)
			attempts++
			continue

		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, false, perr.Newf(perr.ErrorCodeUnknown, "gamestore unexpected status %d body %s", resp.StatusCode, string(body))
		}
	}
}

// ListAll pages from after until the store reports no more records, invoking
// fn once per page. Any page failing after retries aborts the whole walk
func (c *Client) ListAll(ctx context.Context, after uint64, fn func(items []Item) error) error {
	cursor := after
	for {
		items, more, err := c.List(ctx, cursor)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := fn(items); err != nil {
				return err
			}
			cursor = items[len(items)-1].ID
		}
		if !more || len(items) == 0 {
			return nil
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func retryAfter(h http.Header) time.Duration {
	if s := h.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}

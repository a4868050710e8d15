package notify

import (
	"bytes"
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"atlasmeta/internal/adapters/cache"
	"atlasmeta/internal/core/clean"
	"atlasmeta/internal/core/record"
	perr "atlasmeta/internal/platform/errors"
	"atlasmeta/internal/platform/logger"
)

// MirrorPort is the slice of the raw-record mirror the notifier reads
type MirrorPort interface {
	All(ctx context.Context, fn func(rec cache.Record) error) error
}

// Config holds the notifier's tunables
type Config struct {
	// WebhookURL receives the Discord message; empty means dry run
	WebhookURL string

	// SiteURL is appended to every message
	SiteURL string

	// Clean is passed to the record normalizer
	Clean clean.Config

	MaxRetries int
	RetryBase  time.Duration

	// Now is injectable for deterministic tests; nil means time.Now
	Now func() time.Time
}

// Service builds and delivers the daily summary
type Service struct {
	mirror MirrorPort
	cfg    Config
	norm   *clean.Normalizer
	http   *http.Client
	log    logger.Logger
	sleep  func(time.Duration)
	now    func() time.Time
}

// New wires a Service
func New(mirror MirrorPort, cfg Config) *Service {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		mirror: mirror,
		cfg:    cfg,
		norm:   clean.New(cfg.Clean),
		http:   &http.Client{Timeout: 15 * time.Second},
		log:    *logger.Named("notify"),
		sleep:  time.Sleep,
		now:    now,
	}
}

// Run summarizes yesterday (UTC) and posts the message to the webhook.
// Returns the rendered message either way
func (s *Service) Run(ctx context.Context) (Summary, string, error) {
	var corpus []record.Cleaned
	err := s.mirror.All(ctx, func(rec cache.Record) error {
		var raw record.Raw
		if err := json.Unmarshal(rec.Doc, &raw); err != nil {
			return nil
		}
		if g, rej := s.norm.Normalize(raw); rej == clean.RejectNone {
			corpus = append(corpus, g)
		}
		return nil
	})
	if err != nil {
		return Summary{}, "", err
	}

	yesterday := s.now().UTC().AddDate(0, 0, -1)
	summary := Build(ForDay(corpus, yesterday), yesterday)
	msg := Format(summary, s.cfg.SiteURL)

	s.log.Info().
		Str("date", summary.Date).
		Int("games", summary.TotalGames).
		Int("players", summary.UniquePlayers).
		Msg("daily summary built")

	if s.cfg.WebhookURL == "" {
		return summary, msg, nil
	}
	if err := s.post(ctx, msg); err != nil {
		return summary, msg, err
	}
	return summary, msg, nil
}

// post delivers the message with bounded retries on transient failures
func (s *Service) post(ctx context.Context, msg string) error {
	body, err := json.Marshal(map[string]string{"content": msg})
	if err != nil {
		return perr.JSONErrf("notify: marshal webhook body: %v", err)
	}

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "notify new request failed")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.http.Do(req)
		if err == nil {
			code := resp.StatusCode
			_ = resp.Body.Close()
			if code < 300 {
				return nil
			}
			err = perr.Newf(perr.ErrorCodeUnavailable, "notify webhook status %d", code)
			if code < 500 && code != http.StatusTooManyRequests {
				return err
			}
		}

		if attempt+1 >= s.cfg.MaxRetries {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "notify webhook failed after %d attempts", attempt+1)
		}
		back := s.cfg.RetryBase << uint(attempt)
		s.log.Warn().Dur("retry_in", back).Int("attempt", attempt).Msg("notify webhook retrying")
		s.sleep(back)
	}
}

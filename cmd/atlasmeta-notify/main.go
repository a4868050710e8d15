// atlasmeta-notify builds yesterday's activity summary from the local mirror
// and posts it to a Discord webhook
package main

import (
	"context"
	"fmt"

	"atlasmeta/internal/adapters/cache"
	"atlasmeta/internal/core/clean"
	"atlasmeta/internal/platform/config"
	"atlasmeta/internal/platform/logger"
	"atlasmeta/internal/services/notify"
)

func main() {
	cfg := config.New().Prefix("NOTIFY_")
	l := logger.Get()

	mirror, err := cache.Open(cache.Options{
		Dir: cfg.MayString("CACHE_DIR", "site/data/raw_cache"),
	})
	if err != nil {
		l.Panic().Err(err).Msg("cache.Open failed")
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close mirror")
		}
	}()

	cleanCfg := clean.Default()
	cleanCfg.MinTurns = cfg.MayInt("MIN_TURNS", clean.DefaultMinTurns)

	svc := notify.New(mirror, notify.Config{
		WebhookURL: cfg.MayString("WEBHOOK_URL", ""),
		SiteURL:    cfg.MayString("SITE_URL", ""),
		Clean:      cleanCfg,
		MaxRetries: cfg.MayInt("MAX_RETRIES", 3),
	})

	summary, msg, err := svc.Run(context.Background())
	if err != nil {
		l.Panic().Err(err).Msg("notify run failed")
	}

	// echo the message so CI logs carry it even on dry runs
	fmt.Println(msg)
	l.Info().Str("date", summary.Date).Int("games", summary.TotalGames).Msg("daily summary delivered")
}

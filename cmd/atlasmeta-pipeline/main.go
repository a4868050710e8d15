// atlasmeta-pipeline syncs the raw match mirror, cleans the corpus, and
// publishes the aggregated site documents
package main

import (
	"context"
	"os"
	"time"

	"atlasmeta/internal/adapters/cache"
	"atlasmeta/internal/adapters/ingest/gamestore"
	"atlasmeta/internal/adapters/refdata"
	"atlasmeta/internal/adapters/sitedata"
	"atlasmeta/internal/core/clean"
	"atlasmeta/internal/core/stats"
	"atlasmeta/internal/platform/config"
	"atlasmeta/internal/platform/logger"
	"atlasmeta/internal/services/pipeline/service"
)

func main() {
	root := config.New()
	cfg := root.Prefix("PIPELINE_")   // pipeline tunables
	storeCfg := root.Prefix("STORE_") // remote store credentials

	l := logger.Get()
	ctx := context.Background()

	dataDir := cfg.MayString("DATA_DIR", "site/data")
	cacheDir := cfg.MayString("CACHE_DIR", "site/data/raw_cache")

	// a forced resync drops the mirror; the next sync rebuilds it from
	// record zero and must produce the same corpus
	if cfg.MayBool("RESYNC", false) {
		l.Info().Str("dir", cacheDir).Msg("resync requested, dropping mirror")
		if err := os.RemoveAll(cacheDir); err != nil {
			l.Panic().Err(err).Msg("dropping mirror failed")
		}
	}

	mirror, err := cache.Open(cache.Options{
		Dir:         cacheDir,
		MaxMemoryMB: int64(cfg.MayInt("CACHE_MEMORY_MB", 64)),
	})
	if err != nil {
		l.Panic().Err(err).Msg("cache.Open failed")
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close mirror")
		}
	}()

	remote := gamestore.NewClient(gamestore.Options{
		BaseURL:    storeCfg.MustURL("BASE_URL").String(),
		APIKey:     storeCfg.MayString("API_KEY", ""),
		PageSize:   storeCfg.MayInt("PAGE_SIZE", 500),
		MaxRetries: storeCfg.MayInt("MAX_RETRIES", 5),
	})

	pub, err := sitedata.NewWriter(dataDir)
	if err != nil {
		l.Panic().Err(err).Msg("sitedata.NewWriter failed")
	}

	cleanCfg := clean.Default()
	cleanCfg.MinTurns = cfg.MayInt("MIN_TURNS", clean.DefaultMinTurns)
	norm := clean.New(cleanCfg)

	cards, commanders, look := loadRefdata(cfg, norm, l)

	svc := service.New(remote, mirror, pub, service.Config{
		Clean:   cleanCfg,
		Lookups: look,
	})

	report, err := svc.Run(ctx)
	if err != nil {
		l.Panic().Err(err).Str("run_id", report.RunID).Msg("pipeline run failed")
	}

	if err := publishRefdata(svc, cfg, cards, commanders); err != nil {
		l.Panic().Err(err).Msg("refdata publication failed")
	}

	l.Info().
		Str("run_id", report.RunID).
		Int("fetched", report.Fetched).
		Int("cached", report.Cached).
		Int("accepted", report.Accepted).
		Any("rejected", report.Rejected).
		Int("docs", report.Docs).
		Msg("pipeline run complete")
}

// loadRefdata loads the optional reference catalogs. Missing CSVs degrade to
// neutral lookups rather than failing the run
func loadRefdata(cfg config.Conf, norm *clean.Normalizer, l *logger.Logger) ([]refdata.Card, []refdata.Commander, stats.Lookups) {
	var (
		cards      []refdata.Card
		commanders []refdata.Commander
	)

	if path := cfg.MayString("CARDS_CSV", ""); path != "" {
		var err error
		cards, err = refdata.LoadCards(path, cfg.MayString("CARD_ART_DIR", ""))
		if err != nil {
			l.Panic().Err(err).Str("path", path).Msg("loading card catalog failed")
		}
		l.Info().Int("cards", len(cards)).Msg("card catalog loaded")
	}
	if path := cfg.MayString("COMMANDERS_CSV", ""); path != "" {
		var err error
		commanders, err = refdata.LoadCommanders(path, cfg.MayString("COMMANDER_ART_DIR", ""), norm.Commander)
		if err != nil {
			l.Panic().Err(err).Str("path", path).Msg("loading commander catalog failed")
		}
		l.Info().Int("commanders", len(commanders)).Msg("commander catalog loaded")
	}
	return cards, commanders, refdata.Lookups(cards, commanders)
}

// publishRefdata writes the flat catalog documents next to the stats
func publishRefdata(svc *service.Service, cfg config.Conf, cards []refdata.Card, commanders []refdata.Commander) error {
	var cardsDoc, commandersDoc, cardlistDoc any
	if cards != nil {
		cardsDoc = cards
	}
	if commanders != nil {
		commandersDoc = commanders
	}
	if asset := cfg.MayString("CARDLIST_ASSET", ""); asset != "" {
		cl, err := refdata.LoadCardList(asset, clean.Default().CommanderRenames, time.Now())
		if err != nil {
			return err
		}
		cardlistDoc = cl
	}
	return svc.PublishRefdata(cardsDoc, commandersDoc, cardlistDoc)
}

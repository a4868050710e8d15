// Package service implements the aggregation pipeline: sync the mirror,
// normalize the corpus, aggregate the sixteen slices, publish the documents
package service

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"atlasmeta/internal/core/clean"
	"atlasmeta/internal/core/record"
	"atlasmeta/internal/core/slice"
	"atlasmeta/internal/core/stats"
	perr "atlasmeta/internal/platform/errors"
	"atlasmeta/internal/platform/logger"
	"atlasmeta/internal/services/pipeline/domain"
)

// Config holds the pipeline's tunables
type Config struct {
	// Clean is passed to the record normalizer
	Clean clean.Config

	// Lookups carries the reference catalogs into the aggregations
	Lookups stats.Lookups

	// Now is injectable for deterministic runs; nil means time.Now
	Now func() time.Time
}

// Service runs one pipeline invocation end to end
type Service struct {
	remote domain.RemotePort
	mirror domain.MirrorPort
	pub    domain.PublisherPort

	norm *clean.Normalizer
	look stats.Lookups
	now  func() time.Time
}

// New wires a Service from its ports
func New(remote domain.RemotePort, mirror domain.MirrorPort, pub domain.PublisherPort, cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		remote: remote,
		mirror: mirror,
		pub:    pub,
		norm:   clean.New(cfg.Clean),
		look:   cfg.Lookups,
		now:    now,
	}
}

// Run executes one full pipeline pass. Any error aborts the run before
// publication: a failed run never replaces previously published documents
func (s *Service) Run(ctx context.Context) (domain.RunReport, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx).With().Str("component", "pipeline").Logger()

	report := domain.RunReport{RunID: runID, Rejected: map[string]int{}}

	// sync the mirror tail
	fetched, err := s.sync(ctx)
	if err != nil {
		return report, err
	}
	report.Fetched = fetched

	cached, err := s.mirror.Count(ctx)
	if err != nil {
		return report, err
	}
	report.Cached = cached
	log.Info().Int("fetched", fetched).Int("cached", cached).Msg("mirror synced")

	// normalize the full corpus in mirror (ID) order so output is stable
	// across runs
	corpus, rejected, err := s.normalize(ctx)
	if err != nil {
		return report, err
	}
	report.Accepted = len(corpus)
	report.Rejected = rejected
	log.Info().Int("accepted", len(corpus)).Any("rejected", rejected).Msg("corpus cleaned")

	// aggregate the window x map grid
	docs, err := s.aggregate(ctx, corpus, runID, rejected)
	if err != nil {
		return report, err
	}

	// publish only after every document built cleanly
	for _, doc := range docs {
		if err := s.pub.WriteDoc(doc.name, doc.payload, doc.compact); err != nil {
			return report, err
		}
	}
	report.Docs = len(docs)
	log.Info().Int("docs", len(docs)).Msg("documents published")

	return report, nil
}

func (s *Service) sync(ctx context.Context) (int, error) {
	after, _, err := s.mirror.MaxID(ctx)
	if err != nil {
		return 0, err
	}
	fetched := 0
	err = s.remote.ListAll(ctx, after, func(items []domain.StoreItem) error {
		recs := make([]domain.MirrorRecord, 0, len(items))
		for _, it := range items {
			recs = append(recs, domain.MirrorRecord{ID: it.ID, Doc: it.Record})
		}
		if err := s.mirror.PutBatch(ctx, recs); err != nil {
			return err
		}
		fetched += len(recs)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fetched, nil
}

func (s *Service) normalize(ctx context.Context) ([]record.Cleaned, map[string]int, error) {
	var corpus []record.Cleaned
	rejected := map[string]int{}

	err := s.mirror.All(ctx, func(rec domain.MirrorRecord) error {
		var raw record.Raw
		if err := json.Unmarshal(rec.Doc, &raw); err != nil {
			// a document the store itself handed us that does not parse is a
			// corrupt-players class failure, not a run failure
			rejected[clean.RejectCorruptPlayers.String()]++
			return nil
		}
		g, rej := s.norm.Normalize(raw)
		if rej != clean.RejectNone {
			rejected[rej.String()]++
			return nil
		}
		corpus = append(corpus, g)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return corpus, rejected, nil
}

// doc is one built output document awaiting publication
type doc struct {
	name    string
	payload any
	compact bool
}

// aggregate builds every output document: one per statistic, each keyed
// window then map, plus the metadata header
func (s *Service) aggregate(ctx context.Context, corpus []record.Cleaned, runID string, rejected map[string]int) ([]doc, error) {
	now := s.now().UTC()
	registry := stats.Registry(s.look)

	// doc name -> window key -> map name -> payload
	grids := make(map[string]map[string]map[string]any, len(registry)+1)
	for _, agg := range registry {
		grids[agg.Doc] = map[string]map[string]any{}
	}
	meta := map[string]map[string]domain.Metadata{}

	for _, w := range slice.Windows() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inWindow := slice.ByWindow(corpus, w, now)
		for _, m := range slice.MapNames() {
			games := slice.ByMap(inWindow, m)

			for _, agg := range registry {
				if grids[agg.Doc][w.Key] == nil {
					grids[agg.Doc][w.Key] = map[string]any{}
				}
				grids[agg.Doc][w.Key][m] = agg.Fn(games)
			}

			if meta[w.Key] == nil {
				meta[w.Key] = map[string]domain.Metadata{}
			}
			meta[w.Key][m] = domain.Metadata{
				LastUpdated:  now.Format(time.RFC3339),
				TotalMatches: len(games),
				TotalPlayers: uniquePlayers(games),
				DataVersion:  domain.DataVersion,
				RunID:        runID,
				Rejected:     rejected,
			}
		}
	}

	docs := make([]doc, 0, len(registry)+1)
	docs = append(docs, doc{name: "metadata", payload: meta})
	for _, agg := range registry {
		docs = append(docs, doc{name: agg.Doc, payload: grids[agg.Doc], compact: agg.Compact})
	}
	return docs, nil
}

func uniquePlayers(games []record.Cleaned) int {
	names := map[string]bool{}
	for _, g := range games {
		for _, p := range g.Players {
			names[p.Name] = true
		}
	}
	return len(names)
}

// PublishRefdata writes the flat reference documents alongside the stats
func (s *Service) PublishRefdata(cards, commanders, cardlist any) error {
	if cards != nil {
		if err := s.pub.WriteDoc("cards", cards, false); err != nil {
			return perr.Wrapf(err, perr.CodeOf(err), "publish cards")
		}
	}
	if commanders != nil {
		if err := s.pub.WriteDoc("commanders", commanders, false); err != nil {
			return perr.Wrapf(err, perr.CodeOf(err), "publish commanders")
		}
	}
	if cardlist != nil {
		if err := s.pub.WriteDoc("cardlist", cardlist, false); err != nil {
			return perr.Wrapf(err, perr.CodeOf(err), "publish cardlist")
		}
	}
	return nil
}

// Package domain holds the core types for the aggregation pipeline
package domain

import (
	"atlasmeta/internal/adapters/cache"
	"atlasmeta/internal/adapters/ingest/gamestore"
)

// StoreItem re-exports the remote store item shape used by the sync pass
type StoreItem = gamestore.Item

// MirrorRecord re-exports the cached record shape
type MirrorRecord = cache.Record

// DataVersion is the published contract version. Bump on any change to the
// document shapes the frontend reads
const DataVersion = "3.0.0"

// Metadata is the per-slice header document
type Metadata struct {
	LastUpdated  string         `json:"last_updated"`
	TotalMatches int            `json:"total_matches"`
	TotalPlayers int            `json:"total_players"`
	DataVersion  string         `json:"data_version"`
	RunID        string         `json:"run_id"`
	Rejected     map[string]int `json:"rejected"`
}

// RunReport summarizes one pipeline invocation
type RunReport struct {
	RunID    string
	Fetched  int
	Cached   int
	Accepted int
	Rejected map[string]int
	Docs     int
}

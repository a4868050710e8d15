// Package refdata loads the reference catalogs: card and commander
// definitions from the curated CSVs, and the ordered card list from the game
// client's asset dump
package refdata

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"atlasmeta/internal/core/stats"
	"atlasmeta/internal/platform/errors"
	pstrings "atlasmeta/internal/platform/strings"
)

// patronFactions maps the CSV's capitalized patron names to the canonical
// lowercase faction keys
var patronFactions = map[string]string{
	"Skaal":    "skaal",
	"Grenalia": "grenalia",
	"Lucia":    "lucia",
	"Neutral":  "neutral",
	"Shadis":   "shadis",
	"Archaeon": "archaeon",
}

// Faction resolves a patron column value, defaulting to neutral
func Faction(patron string) string {
	if f, ok := patronFactions[strings.TrimSpace(patron)]; ok {
		return f
	}
	return "neutral"
}

// Card is one row of the card catalog as published to the frontend
type Card struct {
	Name      string  `json:"name"      validate:"required"`
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	Subtype   string  `json:"subtype"`
	Cost      *int    `json:"cost"`
	Attack    *int    `json:"attack"`
	Speed     *int    `json:"speed"`
	Health    *int    `json:"health"`
	Legendary bool    `json:"legendary"`
	Faction   string  `json:"faction"   validate:"required,oneof=skaal grenalia lucia neutral shadis archaeon"`
	Art       *string `json:"art"`
}

// Commander is one row of the commander catalog
type Commander struct {
	Name      string  `json:"name"      validate:"required"`
	Text      string  `json:"text"`
	Subtype   string  `json:"subtype"`
	Dominion  int     `json:"dominion"`
	Intellect int     `json:"intellect"`
	Speed     int     `json:"speed"`
	Health    int     `json:"health"`
	Faction   string  `json:"faction"   validate:"required,oneof=skaal grenalia lucia neutral shadis archaeon"`
	Art       *string `json:"art"`
}

var validate = validator.New()

// LoadCards reads the card CSV. artDir, when non-empty, is probed for
// per-card screenshots to fill the art field
func LoadCards(path, artDir string) ([]Card, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make([]Card, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row["Name"])
		if name == "" {
			continue
		}
		c := Card{
			Name:      name,
			Type:      strings.TrimSpace(row["Type"]),
			Text:      strings.TrimSpace(row["TextBox"]),
			Subtype:   subtype(row["Subtype"]),
			Cost:      digitField(row["Cost"]),
			Attack:    digitField(row["Attack"]),
			Speed:     digitField(row["Speed"]),
			Health:    digitField(row["Health"]),
			Legendary: strings.EqualFold(strings.TrimSpace(row["Legendary"]), "true"),
			Faction:   Faction(row["Patron"]),
		}
		if artDir != "" {
			file := artSlug(name) + ".png"
			if _, err := os.Stat(filepath.Join(artDir, file)); err == nil {
				c.Art = pstrings.Ptr("CardScreenshots/" + file)
			}
		}
		if err := validate.Struct(c); err != nil {
			return nil, errors.Validationf("refdata: card %q: %v", name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// LoadCommanders reads the commander CSV. canon is applied to each name
// before publication so legacy spellings fold into their canonical forms
func LoadCommanders(path, artDir string, canon func(string) string) ([]Commander, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if canon == nil {
		canon = func(s string) string { return s }
	}

	out := make([]Commander, 0, len(rows))
	for _, row := range rows {
		name := canon(strings.TrimSpace(row["Name"]))
		if name == "" {
			continue
		}
		c := Commander{
			Name:      name,
			Text:      strings.TrimSpace(row["TextBox"]),
			Subtype:   subtype(row["Subtype"]),
			Dominion:  intField(row["Dominion"]),
			Intellect: intField(row["Intellect"]),
			Speed:     intField(row["Speed"]),
			Health:    intField(row["Health"]),
			Faction:   Faction(row["Patron"]),
		}
		if artDir != "" {
			file := strings.ToLower(artSlug(name)) + ".jpg"
			if _, err := os.Stat(filepath.Join(artDir, file)); err == nil {
				c.Art = pstrings.Ptr("assets/commanders/" + file)
			}
		}
		if err := validate.Struct(c); err != nil {
			return nil, errors.Validationf("refdata: commander %q: %v", name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Lookups builds the aggregation-side catalog view from loaded refdata
func Lookups(cards []Card, commanders []Commander) stats.Lookups {
	look := stats.Lookups{
		CommanderFaction: make(map[string]string, len(commanders)),
		Card:             make(map[string]stats.CardMeta, len(cards)),
	}
	for _, c := range commanders {
		look.CommanderFaction[c.Name] = c.Faction
	}
	for _, c := range cards {
		look.Card[c.Name] = stats.CardMeta{Faction: c.Faction, Type: c.Type, Cost: c.Cost}
	}
	return look
}

// readCSV reads a headered CSV into row maps keyed by column name
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOf("refdata: open %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, errors.IOf("refdata: read header %s: %v", path, err)
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.IOf("refdata: read %s: %v", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// subtype folds the CSV's literal "None" into an empty string
func subtype(s string) string {
	s = strings.TrimSpace(s)
	if s == "None" {
		return ""
	}
	return s
}

// digitField parses an all-digit string, nil otherwise
func digitField(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// intField parses a stat column, zero on blank or garbage
func intField(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// artSlug turns "Card Name, Fancy" into "Card-Name-Fancy"
func artSlug(name string) string {
	s := strings.ReplaceAll(name, " ", "-")
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, "'", "")
}

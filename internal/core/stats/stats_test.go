package stats

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"atlasmeta/internal/core/record"
)

func look() Lookups {
	two, three := 2, 3
	return Lookups{
		CommanderFaction: map[string]string{
			"Aria":  "skaal",
			"Borin": "grenalia",
		},
		Card: map[string]CardMeta{
			"Strike": {Faction: "skaal", Type: "Spell", Cost: &two},
			"Golem":  {Faction: "neutral", Type: "Minion", Cost: &three},
			"Relic":  {Faction: "archaeon", Type: "Artifact"},
		},
	}
}

func side(cmd string, won bool) record.Player {
	return record.Player{Name: cmd + "-pilot", Commander: cmd, Won: won, Turns: 8, Actions: 40}
}

func duel(id string, start time.Time, first record.FirstPlayer, p1, p2 record.Player) record.Cleaned {
	g := record.Cleaned{GameID: id, Map: "Dunes", First: first, Players: [2]record.Player{p1, p2}}
	if !start.IsZero() {
		g.StartTime = &start
	}
	return g
}

var week1 = time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)  // Monday
var week2 = time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC) // next Monday

func TestWeekKey(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2025-W00"},
		{time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC), "2025-W00"},
		{time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), "2025-W23"},
		{time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2024-W53"},
	}
	for _, tc := range cases {
		if got := WeekKey(tc.date); got != tc.want {
			t.Fatalf("WeekKey(%s) = %q, want %q", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestRegistryEmptyCorpus(t *testing.T) {
	// every aggregation must yield a structurally valid, non-null payload
	// from an empty slice
	for _, agg := range Registry(look()) {
		payload := agg.Fn(nil)
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("%s: marshal: %v", agg.Doc, err)
		}
		if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
			t.Fatalf("%s: empty corpus payload = %s", agg.Doc, b)
		}
	}
}

func TestRegistryCatalog(t *testing.T) {
	regs := Registry(look())
	if len(regs) != 14 {
		t.Fatalf("registry has %d entries, want 14", len(regs))
	}
	seen := map[string]bool{}
	for _, agg := range regs {
		if seen[agg.Doc] {
			t.Fatalf("duplicate doc %q", agg.Doc)
		}
		seen[agg.Doc] = true
		if agg.Compact != (agg.Doc == "matchup_details") {
			t.Fatalf("%s: compact = %v", agg.Doc, agg.Compact)
		}
	}
}

func TestCommanderStats(t *testing.T) {
	games := []record.Cleaned{
		duel("g1", week1, record.FirstSeat1, side("Aria", true), side("Borin", false)),
		duel("g2", week1, record.FirstSeat1, side("Aria", false), side("Borin", true)),
		duel("g3", week1, record.FirstSeat1, side("Aria", true), side("Cael", false)),
	}
	out := CommanderStats(games, look())
	if len(out) != 3 {
		t.Fatalf("got %d commanders, want 3", len(out))
	}
	if out[0].Name != "Aria" || out[0].Matches != 3 || out[0].Wins != 2 {
		t.Fatalf("top row = %+v", out[0])
	}
	if out[0].Winrate != 0.6667 {
		t.Fatalf("Aria winrate = %v, want 0.6667", out[0].Winrate)
	}
	if out[0].Faction != "skaal" || out[1].Faction != "grenalia" {
		t.Fatalf("factions = %q %q", out[0].Faction, out[1].Faction)
	}
	// unknown commander resolves to neutral; ties break by name
	if out[2].Name != "Cael" || out[2].Faction != "neutral" {
		t.Fatalf("third row = %+v", out[2])
	}

	// wins and losses always reconcile against matches
	for _, row := range out {
		if row.Wins > row.Matches {
			t.Fatalf("%s: wins %d > matches %d", row.Name, row.Wins, row.Matches)
		}
	}
}

func TestCommanderStatsSkipsUnnamed(t *testing.T) {
	games := []record.Cleaned{
		duel("g1", week1, record.FirstSeat1, side("Aria", true), side("", false)),
	}
	out := CommanderStats(games, look())
	if len(out) != 1 || out[0].Name != "Aria" {
		t.Fatalf("unnamed side leaked into stats: %+v", out)
	}
}

func TestMatchupsSymmetry(t *testing.T) {
	games := []record.Cleaned{
		duel("g1", week1, record.FirstSeat1, side("Aria", true), side("Borin", false)),
		duel("g2", week1, record.FirstSeat1, side("Aria", true), side("Borin", false)),
		duel("g3", week1, record.FirstSeat1, side("Borin", true), side("Aria", false)),
		// no winner recorded: contributes to neither direction
		duel("g4", week1, record.FirstSeat1, side("Aria", false), side("Borin", false)),
	}
	m := Matchups(games)
	if len(m.Commanders) != 2 || m.Commanders[0] != "Aria" || m.Commanders[1] != "Borin" {
		t.Fatalf("roster = %v", m.Commanders)
	}

	cells := map[[2]string]MatchupCell{}
	for _, c := range m.Matchups {
		cells[[2]string{c.Commander, c.Opponent}] = c
	}
	ab := cells[[2]string{"Aria", "Borin"}]
	ba := cells[[2]string{"Borin", "Aria"}]
	if ab.Wins != 2 || ab.Losses != 1 || ab.Total != 3 {
		t.Fatalf("Aria v Borin = %+v", ab)
	}
	if ab.Wins != ba.Losses || ab.Losses != ba.Wins {
		t.Fatalf("matrix asymmetric: %+v vs %+v", ab, ba)
	}
	if ab.Winrate != 0.6667 {
		t.Fatalf("Aria v Borin winrate = %v", ab.Winrate)
	}
}

func TestMatchupsMirror(t *testing.T) {
	games := []record.Cleaned{
		duel("g1", week1, record.FirstSeat1, side("Aria", true), side("Aria", false)),
	}
	m := Matchups(games)
	if len(m.Matchups) != 1 {
		t.Fatalf("mirror produced %d cells, want 1", len(m.Matchups))
	}
	diag := m.Matchups[0]
	if diag.Wins != 1 || diag.Losses != 1 || diag.Total != 2 {
		t.Fatalf("diagonal cell = %+v", diag)
	}
}

func TestMatchupDetails(t *testing.T) {
	withCards := func(p record.Player, played ...string) record.Player {
		for _, name := range played {
			p.Played = append(p.Played, record.CardCount{Name: name, Count: 1})
			p.Drawn = append(p.Drawn, record.CardCount{Name: name, Count: 1})
		}
		return p
	}
	games := []record.Cleaned{
		duel("g1", week1, record.FirstSeat1, withCards(side("Aria", true), "Strike"), side("Borin", false)),
		duel("g2", week1, record.FirstSeat2, withCards(side("Aria", true), "Strike"), side("Borin", false)),
		duel("g3", week1, record.FirstSeat1, withCards(side("Aria", false), "Strike"), side("Borin", true)),
	}
	out := MatchupDetails(games)
	if len(out) != 2 {
		t.Fatalf("got %d pairings, want 2", len(out))
	}
	// sorted by commander then opponent
	ab := out[0]
	if ab.Commander != "Aria" || ab.Opponent != "Borin" {
		t.Fatalf("first pairing = %s vs %s", ab.Commander, ab.Opponent)
	}
	if ab.Wins != 2 || ab.Losses != 1 || ab.Total != 3 || ab.Winrate != 0.6667 {
		t.Fatalf("pairing record = %+v", ab)
	}
	ft := ab.FirstTurn
	if ft.CmdFirstGames != 2 || ft.CmdFirstWins != 1 || ft.OppFirstGames != 1 || ft.OppFirstWins != 0 {
		t.Fatalf("first-turn split = %+v", ft)
	}
	// Strike was played three times by Aria, clearing the floor
	if len(ab.CmdCards) != 1 || ab.CmdCards[0].Name != "Strike" {
		t.Fatalf("cmd cards = %+v", ab.CmdCards)
	}
	if ab.CmdCards[0].Played != 3 || ab.CmdCards[0].PlayedWinrate != 0.6667 {
		t.Fatalf("Strike record = %+v", ab.CmdCards[0])
	}
	// Borin never played a card, so Aria's opponent view is empty
	if len(ab.OppCards) != 0 {
		t.Fatalf("opp cards = %+v", ab.OppCards)
	}

	// the reverse pairing mirrors the record and sees Aria's cards as the
	// opponent's
	ba := out[1]
	if ba.Wins != ab.Losses || ba.Losses != ab.Wins {
		t.Fatalf("reverse pairing %+v does not mirror %+v", ba, ab)
	}
	if len(ba.OppCards) != 1 || ba.OppCards[0].Name != "Strike" {
		t.Fatalf("reverse opp cards = %+v", ba.OppCards)
	}
}

func TestMatchupDetailsCardFloor(t *testing.T) {
	p1 := side("Aria", true)
	p1.Played = []record.CardCount{{Name: "Strike", Count: 2}}
	games := []record.Cleaned{
		duel("g1", week1, record.FirstSeat1, p1, side("Borin", false)),
		duel("g2", week1, record.FirstSeat1, p1, side("Borin", false)),
	}
	out := MatchupDetails(games)
	// two played games is under the three-game floor
	if len(out[0].CmdCards) != 0 {
		t.Fatalf("under-floor card reported: %+v", out[0].CmdCards)
	}
}

func TestCardStats(t *testing.T) {
	p1 := side("Aria", true)
	p1.Deck = []record.CardCount{{Name: "Strike", Count: 3}, {Name: "Golem", Count: 2}}
	p1.Drawn = []record.CardCount{{Name: "Strike", Count: 2}}
	p1.Played = []record.CardCount{{Name: "Strike", Count: 1}}
	p2 := side("Borin", false)
	p2.Deck = []record.CardCount{{Name: "Strike", Count: 1}}

	out := CardStats([]record.Cleaned{duel("g1", week1, record.FirstSeat1, p1, p2)}, look())
	if len(out) != 2 {
		t.Fatalf("got %d cards, want 2", len(out))
	}
	strike := out[0]
	if strike.Name != "Strike" || strike.DeckCount != 2 {
		t.Fatalf("top card = %+v", strike)
	}
	// one game, two player-sides
	if strike.DeckRate != 1.0 || strike.DrawnRate != 0.5 || strike.PlayedRate != 0.5 {
		t.Fatalf("rates = %v %v %v", strike.DeckRate, strike.DrawnRate, strike.PlayedRate)
	}
	if strike.DeckWinrate != 0.5 || strike.DrawnWinrate != 1.0 || strike.PlayedWinrate != 1.0 {
		t.Fatalf("winrates = %v %v %v", strike.DeckWinrate, strike.DrawnWinrate, strike.PlayedWinrate)
	}
	if strike.AvgCopies != 2.0 {
		t.Fatalf("avg copies = %v, want (3+1)/2", strike.AvgCopies)
	}
	if strike.DrawnInstances != 2 || strike.PlayedInstances != 1 {
		t.Fatalf("instances = %d %d", strike.DrawnInstances, strike.PlayedInstances)
	}
	if strike.Faction != "skaal" || strike.Type != "Spell" {
		t.Fatalf("catalog fields = %q %q", strike.Faction, strike.Type)
	}
}

func TestCommanderCardStats(t *testing.T) {
	p1 := side("Aria", true)
	p1.Deck = []record.CardCount{{Name: "Strike", Count: 2}}
	p1.Drawn = []record.CardCount{{Name: "Strike", Count: 1}}
	p1lost := side("Aria", false)
	p1lost.Deck = []record.CardCount{{Name: "Strike", Count: 2}, {Name: "Golem", Count: 1}}

	games := []record.Cleaned{
		duel("g1", week1, record.FirstSeat1, p1, side("Borin", false)),
		duel("g2", week1, record.FirstSeat1, p1lost, side("Borin", true)),
	}
	out := CommanderCardStats(games)
	aria := out["Aria"]
	if len(aria) != 2 {
		t.Fatalf("Aria pool = %+v", aria)
	}
	strike := aria[0]
	if strike.Name != "Strike" || strike.InclusionRate != 1.0 || strike.Games != 2 {
		t.Fatalf("Strike row = %+v", strike)
	}
	if strike.DrawnWinrate == nil || *strike.DrawnWinrate != 1.0 {
		t.Fatalf("drawn winrate = %v", strike.DrawnWinrate)
	}
	// never played: rate carried as nil, not zero
	if strike.PlayedWinrate != nil {
		t.Fatalf("played winrate should be nil, got %v", *strike.PlayedWinrate)
	}
	if strike.AvgCopies != 2.0 {
		t.Fatalf("avg copies = %v", strike.AvgCopies)
	}
	if golem := aria[1]; golem.InclusionRate != 0.5 {
		t.Fatalf("Golem inclusion = %v", golem.InclusionRate)
	}
	// Borin brought no cards at all
	if len(out["Borin"]) != 0 {
		t.Fatalf("Borin pool = %+v", out["Borin"])
	}
}

func TestFirstTurn(t *testing.T) {
	games := []record.Cleaned{
		duel("g1", week1, record.FirstSeat1, side("Aria", true), side("Borin", false)),
		duel("g2", week1, record.FirstSeat2, side("Aria", false), side("Borin", true)),
		duel("g3", week1, record.FirstSeat2, side("Aria", true), side("Borin", false)),
		// randomized seating: excluded entirely
		duel("g4", week1, record.FirstUnknown, side("Aria", true), side("Borin", false)),
	}
	out := FirstTurn(games)
	if out.TotalGames != 3 || out.FirstPlayerWins != 2 {
		t.Fatalf("totals = %d games %d wins", out.TotalGames, out.FirstPlayerWins)
	}
	if out.FirstPlayerWinrate == nil || *out.FirstPlayerWinrate != 0.6667 {
		t.Fatalf("winrate = %v", out.FirstPlayerWinrate)
	}
	aria := out.PerCommander["Aria"]
	if aria.FirstGames != 1 || aria.FirstWins != 1 || aria.SecondGames != 2 || aria.SecondWins != 1 {
		t.Fatalf("Aria split = %+v", aria)
	}
	if aria.SecondWinrate == nil || *aria.SecondWinrate != 0.5 {
		t.Fatalf("Aria second winrate = %v", aria.SecondWinrate)
	}
}

func TestFirstTurnEmpty(t *testing.T) {
	out := FirstTurn(nil)
	if out.TotalGames != 0 || out.FirstPlayerWinrate != nil {
		t.Fatalf("empty payload = %+v", out)
	}
	if out.PerCommander == nil {
		t.Fatalf("per_commander must be an empty object, not null")
	}
}

func TestGameDistributions(t *testing.T) {
	short := 3.5
	long := 120.0
	g1 := duel("g1", week1, record.FirstSeat1, side("Aria", true), side("Borin", false))
	g1.DurationMinutes = &short
	g2 := duel("g2", week1, record.FirstSeat1, side("Aria", true), side("Borin", false))
	g2.DurationMinutes = &long
	g3 := duel("g3", week1, record.FirstSeat1, side("Aria", true), side("Borin", false))
	// g3 has no recorded duration

	out := GameDistributions([]record.Cleaned{g1, g2, g3})
	if out.Duration.Total != 2 || out.Turns.Total != 3 || out.Actions.Total != 3 {
		t.Fatalf("totals = %d %d %d", out.Duration.Total, out.Turns.Total, out.Actions.Total)
	}
	if out.Duration.Counts[1] != 1 {
		t.Fatalf("3.5 minutes should land in 2-4: %v", out.Duration.Counts)
	}
	// overflow clamps into the last bucket
	last := len(out.Duration.Counts) - 1
	if out.Duration.Counts[last] != 1 {
		t.Fatalf("120 minutes should clamp to %q: %v", out.Duration.Labels[last], out.Duration.Counts)
	}
	// both sides play 8 turns and 40 actions
	if out.Turns.Counts[8] != 3 {
		t.Fatalf("16 total turns should land in 16-18: %v", out.Turns.Counts)
	}
	if out.Actions.Counts[4] != 3 {
		t.Fatalf("80 total actions should land in 80-100: %v", out.Actions.Counts)
	}

	sum := 0
	for _, c := range out.Turns.Counts {
		sum += c
	}
	if sum != out.Turns.Total {
		t.Fatalf("turn histogram sums to %d, total %d", sum, out.Turns.Total)
	}
}

func TestDeckComposition(t *testing.T) {
	p1 := side("Aria", true)
	p1.Deck = []record.CardCount{
		{Name: "Strike", Count: 3}, // skaal spell, cost 2
		{Name: "Golem", Count: 2},  // neutral minion, cost 3
		{Name: "Relic", Count: 1},  // archaeon, no catalog cost
	}
	out := DeckComposition([]record.Cleaned{
		duel("g1", week1, record.FirstSeat1, p1, side("Borin", false)),
	}, look())

	aria, ok := out["Aria"]
	if !ok {
		t.Fatalf("Aria missing: %v", out)
	}
	if aria.Faction != "skaal" || aria.DeckCount != 1 {
		t.Fatalf("deck comp = %+v", aria)
	}
	// cost-weighted average over all six copies: (2*3 + 3*2) / 6
	if aria.AvgCost != 2.0 {
		t.Fatalf("avg cost = %v, want 2", aria.AvgCost)
	}
	h := aria.CostHistogram
	if len(h.Labels) != 13 || h.Labels[12] != "12+" {
		t.Fatalf("labels = %v", h.Labels)
	}
	if h.AllDecks[2] != 3 || h.AllDecks[3] != 2 {
		t.Fatalf("cost curve = %v", h.AllDecks)
	}
	if aria.AvgMinionCount != 2 || aria.AvgSpellCount != 3 {
		t.Fatalf("type mix = %v minions %v spells", aria.AvgMinionCount, aria.AvgSpellCount)
	}
	if aria.AvgPatronCards != 3 || aria.AvgNeutralCards != 2 || aria.AvgOtherCards != 1 {
		t.Fatalf("faction mix = %v %v %v", aria.AvgPatronCards, aria.AvgNeutralCards, aria.AvgOtherCards)
	}
	// the winning split holds the same single deck; the losing split is empty
	if aria.WinAvgMinionCount != 2 || aria.LossAvgMinion != 0 {
		t.Fatalf("win/loss splits = %v / %v", aria.WinAvgMinionCount, aria.LossAvgMinion)
	}
	borin := out["Borin"]
	if borin.DeckCount != 1 || borin.AvgCost != 0 {
		t.Fatalf("empty deck profile = %+v", borin)
	}
}

// verifyCardCounts returns the first card whose counts violate
// played <= drawn <= deck, or "" when the table is consistent
func verifyCardCounts(cards []CardStat) string {
	for _, c := range cards {
		if c.PlayedCount > c.DrawnCount || c.DrawnCount > c.DeckCount {
			return c.Name
		}
	}
	return ""
}

func TestCardCountChainCatchesCorruption(t *testing.T) {
	p1 := side("Aria", true)
	p1.Deck = []record.CardCount{{Name: "Strike", Count: 3}}
	p1.Drawn = []record.CardCount{{Name: "Strike", Count: 2}}
	p1.Played = []record.CardCount{{Name: "Strike", Count: 1}}
	out := CardStats([]record.Cleaned{duel("g1", week1, record.FirstSeat1, p1, side("Borin", false))}, look())

	if bad := verifyCardCounts(out); bad != "" {
		t.Fatalf("consistent table flagged %q", bad)
	}
	out[0].PlayedCount = out[0].DrawnCount + 1
	if bad := verifyCardCounts(out); bad != "Strike" {
		t.Fatalf("corrupted table not caught, got %q", bad)
	}
}

// verifyMatchupSymmetry returns the first directed pair whose wins do not
// equal the reverse pair's losses, or nil when the matrix is symmetric
func verifyMatchupSymmetry(m MatchupMatrix) []string {
	cells := map[[2]string]MatchupCell{}
	for _, c := range m.Matchups {
		cells[[2]string{c.Commander, c.Opponent}] = c
	}
	for _, c := range m.Matchups {
		rev := cells[[2]string{c.Opponent, c.Commander}]
		if c.Commander != c.Opponent && (c.Wins != rev.Losses || c.Losses != rev.Wins) {
			return []string{c.Commander, c.Opponent}
		}
	}
	return nil
}

func TestMatchupSymmetryCatchesCorruption(t *testing.T) {
	m := Matchups([]record.Cleaned{
		duel("g1", week1, record.FirstSeat1, side("Aria", true), side("Borin", false)),
		duel("g2", week1, record.FirstSeat1, side("Borin", true), side("Aria", false)),
	})
	if bad := verifyMatchupSymmetry(m); bad != nil {
		t.Fatalf("symmetric matrix flagged %v", bad)
	}
	// drop one loss: Aria's win over Borin no longer has its mirror entry
	for i := range m.Matchups {
		if m.Matchups[i].Commander == "Borin" {
			m.Matchups[i].Losses = 0
		}
	}
	if bad := verifyMatchupSymmetry(m); bad == nil {
		t.Fatal("asymmetric matrix not caught")
	}
}

package refdata

import (
	"bufio"
	"os"
	"strings"
	"time"

	"atlasmeta/internal/platform/errors"
)

// CardListEntry is one ordered card with its client-side index
type CardListEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CardList is the published card index document
type CardList struct {
	Version     string            `json:"version"`
	Total       int               `json:"total"`
	Cards       []CardListEntry   `json:"cards"`
	LegacyNames map[string]string `json:"legacy_names"`
}

// LoadCardList parses the game client's card list asset. The asset is a
// YAML-ish dump; the ordered names sit under a _cardNameOrderedList: block
// as "- Name" lines. legacy maps old spellings to canonical names and is
// published alongside the index
func LoadCardList(assetPath string, legacy map[string]string, today time.Time) (CardList, error) {
	f, err := os.Open(assetPath)
	if err != nil {
		return CardList{}, errors.IOf("refdata: open %s: %v", assetPath, err)
	}
	defer f.Close()

	var names []string
	inList := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "_cardNameOrderedList:" {
			inList = true
			continue
		}
		if inList {
			if strings.HasPrefix(line, "- ") {
				names = append(names, line[2:])
				continue
			}
			break
		}
	}
	if err := sc.Err(); err != nil {
		return CardList{}, errors.IOf("refdata: scan %s: %v", assetPath, err)
	}

	cards := make([]CardListEntry, len(names))
	for i, name := range names {
		cards[i] = CardListEntry{ID: i, Name: name}
	}
	if legacy == nil {
		legacy = map[string]string{}
	}
	return CardList{
		Version:     today.UTC().Format("2006-01-02"),
		Total:       len(cards),
		Cards:       cards,
		LegacyNames: legacy,
	}, nil
}

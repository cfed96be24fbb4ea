package history

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}

// Search returns the entries whose title or URL fuzzily matches q, closest first.
// An empty query matches everything.
func (s *Store) Search(q string) ([]Entry, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}

	q = sanitize(q)
	if q == "" {
		return entries, nil
	}

	targets := lo.Map(entries, func(e Entry, _ int) string {
		return sanitize(e.Title + " " + e.URL)
	})

	ranks := fuzzy.RankFindNormalizedFold(q, targets)
	sort.Stable(ranks)

	return lo.Map(ranks, func(r fuzzy.Rank, _ int) Entry {
		return entries[r.OriginalIndex]
	}), nil
}

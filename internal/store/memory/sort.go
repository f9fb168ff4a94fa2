package memory

import (
	"sort"

	"github.com/evalengine/core/internal/store"
)

// Listing order must be deterministic even though the backing maps are not:
// experiments newest-first (matching the Postgres store's ORDER BY
// created_at DESC), scorers and arena comparisons by name then ID.

func sortByCreatedAt(exps []*store.Experiment) {
	sort.SliceStable(exps, func(i, j int) bool {
		if exps[i].CreatedAt.Equal(exps[j].CreatedAt) {
			return exps[i].ID < exps[j].ID
		}
		return exps[i].CreatedAt.After(exps[j].CreatedAt)
	})
}

func sortScorers(defs []*store.ScorerDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Name == defs[j].Name {
			return defs[i].ID < defs[j].ID
		}
		return defs[i].Name < defs[j].Name
	})
}

func sortArenas(arenas []*store.ArenaComparison) {
	sort.SliceStable(arenas, func(i, j int) bool {
		if arenas[i].Name == arenas[j].Name {
			return arenas[i].ID < arenas[j].ID
		}
		return arenas[i].Name < arenas[j].Name
	})
}

// Package suggestions ranks accounts a viewer might want to follow,
// derived from the same two-hop relation crawl that feeds trust scoring.
package suggestions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tangled.org/corvid.social/corvid/internal/trust"
)

// Suggestion is a candidate account with its endorsement count: the
// number of the viewer's follows that follow it, minus the number that
// mute it.
type Suggestion struct {
	Pubkey       string `json:"pubkey"`
	Endorsements int    `json:"endorsements"`
}

// Service computes follow suggestions from live relation data.
type Service struct {
	source trust.RelationSource
}

// NewService creates a suggestions service backed by the given source.
func NewService(source trust.RelationSource) *Service {
	return &Service{source: source}
}

// ForViewer returns up to limit suggestions for the viewer, ranked by
// endorsement count. Accounts the viewer already follows or mutes are
// excluded, as are accounts with a non-positive endorsement count.
func (s *Service) ForViewer(ctx context.Context, viewer string, limit int) []Suggestion {
	start := time.Now()

	rel := s.source.FetchRelations(ctx, viewer)

	// Fetch every followed neighbor's relations in parallel, same crawl
	// shape as the trust builder.
	results := make(chan trust.Relations, len(rel.Follows))
	var wg sync.WaitGroup

	for pk := range rel.Follows {
		wg.Add(1)
		go func(pk string) {
			defer wg.Done()
			results <- s.source.FetchRelations(ctx, pk)
		}(pk)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	counts := make(map[string]int)
	for neighbor := range results {
		for candidate := range neighbor.Follows {
			counts[candidate]++
		}
		for candidate := range neighbor.Muted {
			counts[candidate]--
		}
	}

	var out []Suggestion
	for candidate, n := range counts {
		if n <= 0 || candidate == viewer {
			continue
		}
		if _, ok := rel.Follows[candidate]; ok {
			continue
		}
		if _, ok := rel.Muted[candidate]; ok {
			continue
		}
		out = append(out, Suggestion{Pubkey: candidate, Endorsements: n})
	}

	// Highest endorsement count first; ties break on pubkey so the
	// ordering is stable across runs.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Endorsements != out[j].Endorsements {
			return out[i].Endorsements > out[j].Endorsements
		}
		return out[i].Pubkey < out[j].Pubkey
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	log.Debug().
		Str("viewer", viewer).
		Int("candidates", len(counts)).
		Int("returned", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("suggestions: computed")

	return out
}

package trust

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tangled.org/corvid.social/corvid/internal/metrics"
	"tangled.org/corvid.social/corvid/internal/tracing"
)

// Relations is one actor's declared follow and mute sets.
type Relations struct {
	Follows map[string]struct{}
	Muted   map[string]struct{}
}

// EmptyRelations returns a Relations with both sets allocated and empty.
// Fetch failures degrade to this value.
func EmptyRelations() Relations {
	return Relations{
		Follows: make(map[string]struct{}),
		Muted:   make(map[string]struct{}),
	}
}

// RelationSource fetches an actor's current relation set from the network.
// Implementations must fail soft: errors and timeouts yield empty sets.
type RelationSource interface {
	FetchRelations(ctx context.Context, pubkey string) Relations
}

// Builder computes trust graphs for a root actor.
type Builder struct {
	source RelationSource
}

// NewBuilder creates a trust graph builder backed by the given source.
func NewBuilder(source RelationSource) *Builder {
	return &Builder{source: source}
}

// Build crawls two hops of relations from the root actor and returns the
// combined score map. The crawl never aborts because of a failed neighbor;
// the caller may re-invoke the whole build to refresh.
func (b *Builder) Build(ctx context.Context, root string) Graph {
	start := time.Now()
	ctx, span := tracing.TrustSpan(ctx, root)
	defer span.End()

	rel := b.source.FetchRelations(ctx, root)

	graph := make(Graph, len(rel.Follows)+len(rel.Muted))
	for pk := range rel.Follows {
		graph[pk] = ScoreFollowed
	}
	// Mutes are assigned after follows, so an actor in both sets keeps
	// the mute score.
	for pk := range rel.Muted {
		graph[pk] = ScoreMuted
	}

	// Fetch every followed neighbor's relations in parallel. Completion
	// order is irrelevant: scoring is a commutative sum.
	results := make(chan Relations, len(rel.Follows))
	var wg sync.WaitGroup

	for pk := range rel.Follows {
		wg.Add(1)
		go func(pk string) {
			defer wg.Done()
			results <- b.source.FetchRelations(ctx, pk)
		}(pk)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	scores := make(map[string]float64)
	for neighbor := range results {
		for candidate := range neighbor.Follows {
			scores[candidate]++
		}
		for candidate := range neighbor.Muted {
			scores[candidate]--
		}
	}

	// Direct scores are never overwritten by computed scores.
	for candidate, score := range scores {
		if _, ok := graph[candidate]; !ok {
			graph[candidate] = score
		}
	}

	metrics.TrustBuildsTotal.Inc()
	metrics.TrustBuildDuration.Observe(time.Since(start).Seconds())

	log.Debug().
		Str("root", root).
		Int("direct", len(rel.Follows)+len(rel.Muted)).
		Int("graph_size", len(graph)).
		Dur("elapsed", time.Since(start)).
		Msg("trust: graph built")

	return graph
}

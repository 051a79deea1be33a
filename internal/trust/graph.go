// Package trust builds web-of-trust score maps from a bounded crawl of
// follow/mute relations. Direct relations of the root actor score ±Inf;
// actors two hops out score the sum of follow/mute votes from the root's
// neighborhood. The graph is rebuilt from scratch on every invocation.
package trust

import "math"

// Sentinel scores for actors the root directly follows or mutes.
// They dominate any computed score under ordinary float comparison.
var (
	ScoreFollowed = math.Inf(1)
	ScoreMuted    = math.Inf(-1)
)

// Graph maps actor pubkeys to trust scores. Absence means a score of zero.
type Graph map[string]float64

// Score returns the actor's score, or zero when the actor is unknown.
func (g Graph) Score(pubkey string) float64 {
	return g[pubkey]
}

// InWoT reports whether the actor clears the threshold. Works uniformly
// for the ±Inf sentinels via standard comparison.
func (g Graph) InWoT(threshold float64, pubkey string) bool {
	return g.Score(pubkey) >= threshold
}

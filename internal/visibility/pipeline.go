// Package visibility implements the layered content filter: a fixed,
// ordered composition of six pure stages combining deletion status,
// flag registries, trust graphs, and mute lists into a role-aware view.
package visibility

import (
	"sort"

	"tangled.org/corvid.social/corvid/internal/curated"
	"tangled.org/corvid.social/corvid/internal/metrics"
	"tangled.org/corvid.social/corvid/internal/models"
	"tangled.org/corvid.social/corvid/internal/moderation"
	"tangled.org/corvid.social/corvid/internal/trust"
)

// Env bundles the externally fetched inputs of one pipeline run. All fields
// are read-only overlays; the pipeline never mutates them.
type Env struct {
	CuratedNSFW   curated.Registry
	CuratedRepost curated.Registry
	Mutes         moderation.Bundles
	DeletedIDs    map[string]struct{}

	SiteGraph     trust.Graph
	PersonalGraph trust.Graph

	SiteThreshold     float64
	PersonalThreshold float64
}

// Filter runs the six pipeline stages in their fixed order:
// deleted, nsfw, repost, trust, moderation, sort. The stage order is part
// of the contract; reordering changes results. Inputs are never mutated.
func Filter(items []models.Item, session models.Session, opts models.FilterOptions, env Env) []models.Item {
	opts = opts.Normalize()

	out := make([]models.Item, len(items))
	copy(out, items)

	out = dropDeleted(out, env.DeletedIDs)
	out = filterFlag(out, opts.NSFW, env.CuratedNSFW, nsfwAxis)
	out = filterFlag(out, opts.Repost, env.CuratedRepost, repostAxis)
	out = filterTrust(out, session, opts.Trust, env)
	out = filterModeration(out, session, opts.Moderation, env.Mutes)
	sortItems(out, opts.Sort)

	metrics.PipelineRunsTotal.Inc()
	return out
}

// dropDeleted removes items whose event id appears in the tombstone set.
func dropDeleted(items []models.Item, deleted map[string]struct{}) []models.Item {
	if len(deleted) == 0 {
		return items
	}
	kept := items[:0:0]
	for _, it := range items {
		if _, ok := deleted[it.ID]; ok {
			metrics.PipelineItemsRemoved.WithLabelValues("deleted").Inc()
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// flagAxis abstracts the nsfw and repost stages, which share their shape:
// a self-assigned flag, a curated registry overlay, and a display flag set
// from the overlay.
type flagAxis struct {
	name       string
	selfFlag   func(models.Item) bool
	curatedSet func(*models.Item)
	curatedGet func(models.Item) bool
}

var nsfwAxis = flagAxis{
	name:       "nsfw",
	selfFlag:   func(it models.Item) bool { return it.NSFW },
	curatedSet: func(it *models.Item) { it.CuratedNSFW = true },
	curatedGet: func(it models.Item) bool { return it.CuratedNSFW },
}

var repostAxis = flagAxis{
	name:       "repost",
	selfFlag:   func(it models.Item) bool { return it.Repost },
	curatedSet: func(it *models.Item) { it.CuratedRepost = true },
	curatedGet: func(it models.Item) bool { return it.CuratedRepost },
}

// filterFlag applies one flag stage. Outside hide mode the curated registry
// overlays a display flag on items not already self-flagged; hide mode
// consults the registry without overlaying, so hidden items are never
// tagged for display.
func filterFlag(items []models.Item, mode models.FlagMode, reg curated.Registry, axis flagAxis) []models.Item {
	if mode == models.FlagHide {
		kept := items[:0:0]
		for _, it := range items {
			if axis.selfFlag(it) || reg.Contains(it.Address) {
				metrics.PipelineItemsRemoved.WithLabelValues(axis.name).Inc()
				continue
			}
			kept = append(kept, it)
		}
		return kept
	}

	// Overlay first: curated flags stick for display in show and only modes.
	for i := range items {
		if !axis.selfFlag(items[i]) && reg.Contains(items[i].Address) {
			axis.curatedSet(&items[i])
		}
	}

	if mode == models.FlagShow {
		return items
	}

	// only-mode keeps flagged items, self or curated, post-overlay.
	kept := items[:0:0]
	for _, it := range items {
		if axis.selfFlag(it) || axis.curatedGet(it) {
			kept = append(kept, it)
			continue
		}
		metrics.PipelineItemsRemoved.WithLabelValues(axis.name).Inc()
	}
	return kept
}

// filterTrust gates items through the trust graphs. Anonymous viewers are
// forced onto the site graph; ineligible viewers requesting a privileged
// mode are silently downgraded to site-only.
func filterTrust(items []models.Item, session models.Session, mode models.TrustMode, env Env) []models.Item {
	if !session.Authenticated() {
		mode = models.TrustSiteOnly
	}

	eligible := session.TrustEligible()

	site := func(it models.Item) bool {
		return env.SiteGraph.InWoT(env.SiteThreshold, it.Author)
	}
	personal := func(it models.Item) bool {
		return env.PersonalGraph.InWoT(env.PersonalThreshold, it.Author)
	}

	var keep func(models.Item) bool
	switch mode {
	case models.TrustNone:
		if eligible {
			return items
		}
		keep = site
	case models.TrustExclude:
		if eligible {
			keep = func(it models.Item) bool { return !site(it) }
		} else {
			keep = site
		}
	case models.TrustPersonalOnly:
		if eligible {
			keep = personal
		} else {
			keep = site
		}
	case models.TrustBoth:
		keep = func(it models.Item) bool { return site(it) && personal(it) }
	default: // site-only
		keep = site
	}

	kept := items[:0:0]
	for _, it := range items {
		if keep(it) {
			kept = append(kept, it)
			continue
		}
		metrics.PipelineItemsRemoved.WithLabelValues("trust").Inc()
	}
	return kept
}

// filterModeration applies the admin and personal mute lists. Illegal
// blocks are removed in every branch; only-blocked inverts the admin sets
// for site admins; fully-unmoderated skips the dismissable admin tiers for
// eligible viewers; moderated additionally applies the personal list.
func filterModeration(items []models.Item, session models.Session, mode models.ModerationMode, mutes moderation.Bundles) []models.Item {
	admin := mutes.Admin
	personal := mutes.Personal

	if mode == models.ModerationOnlyBlocked {
		if session.IsAdmin {
			kept := items[:0:0]
			for _, it := range items {
				if admin.BlocksAny(it.Author, it.ID, it.Address) {
					kept = append(kept, it)
				}
			}
			return kept
		}
		// Non-admins never see the inverted view.
		mode = models.ModerationModerated
	}

	skipAdmin := mode == models.ModerationFullyUnmoderated && session.ModerationEligible()

	kept := items[:0:0]
	for _, it := range items {
		if admin.BlocksIllegal(it.Author, it.ID, it.Address) {
			metrics.PipelineItemsRemoved.WithLabelValues("moderation").Inc()
			continue
		}
		if !skipAdmin && (admin.BlocksRegular(it.Author, it.ID, it.Address) ||
			admin.BlocksHard(it.Author, it.ID, it.Address)) {
			metrics.PipelineItemsRemoved.WithLabelValues("moderation").Inc()
			continue
		}
		if mode == models.ModerationModerated && personal.BlocksRegular(it.Author, it.ID, it.Address) {
			metrics.PipelineItemsRemoved.WithLabelValues("moderation").Inc()
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// sortItems orders by published timestamp. The sort is stable: ties keep
// their relative input order.
func sortItems(items []models.Item, order models.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		if order == models.SortAscending {
			return items[i].PublishedAt.Before(items[j].PublishedAt)
		}
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

package handlers

import (
	"context"
	"net/http"

	"tangled.org/corvid.social/corvid/internal/curated"
	"tangled.org/corvid.social/corvid/internal/models"
	"tangled.org/corvid.social/corvid/internal/moderation"
	"tangled.org/corvid.social/corvid/internal/visibility"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// FeedResponse is the JSON body for GET /api/feed.
type FeedResponse struct {
	Items []models.Item        `json:"items"`
	Count int                  `json:"count"`
	Opts  models.FilterOptions `json:"options"`
}

// HandleFeed assembles the filter environment from live relay responses and
// runs the visibility pipeline. Nothing is cached between requests.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := h.session(r)
	opts := h.filterOptions(r, session)

	items := h.fetcher.FetchArticles(ctx, h.config.FeedLimit)
	items = models.Dedupe(items)

	// The source scope is applied before the pipeline; the pipeline's six
	// stages never see out-of-scope items.
	if opts.Scope == models.ScopeLocal {
		scoped := items[:0:0]
		for _, it := range items {
			if it.Local {
				scoped = append(scoped, it)
			}
		}
		items = scoped
	}

	env, err := h.assembleEnv(ctx, session, opts, items)
	if err != nil {
		log.Error().Err(err).Msg("Failed to assemble filter environment")
		writeError(w, http.StatusInternalServerError, "failed to assemble feed")
		return
	}

	filtered := visibility.Filter(items, session, opts, env)

	writeJSON(w, http.StatusOK, FeedResponse{
		Items: filtered,
		Count: len(filtered),
		Opts:  opts,
	})
}

// assembleEnv fetches the pipeline's inputs in parallel. Each fetch fails
// soft on its own, so the group only errors when the request context dies.
func (h *Handler) assembleEnv(ctx context.Context, session models.Session, opts models.FilterOptions, items []models.Item) (visibility.Env, error) {
	env := visibility.Env{
		SiteThreshold:     h.config.SiteThreshold,
		PersonalThreshold: h.config.PersonalThreshold,
	}

	var admins []string
	var curator string
	if h.moderationService != nil {
		admins = h.moderationService.Admins()
		curator = h.moderationService.CuratorPubkey()
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		env.CuratedNSFW = h.fetcher.FetchCurated(gCtx, curator, curated.KindNSFW)
		return nil
	})
	g.Go(func() error {
		env.CuratedRepost = h.fetcher.FetchCurated(gCtx, curator, curated.KindRepost)
		return nil
	})
	g.Go(func() error {
		env.Mutes = h.fetcher.FetchMuteLists(gCtx, admins, session.Pubkey)
		return nil
	})
	g.Go(func() error {
		env.DeletedIDs = h.fetcher.FetchDeletedIDs(gCtx, items)
		return nil
	})
	g.Go(func() error {
		// Every trust mode can end up consulting the site graph, either
		// directly or through an eligibility downgrade.
		if h.config.SiteOwner != "" {
			env.SiteGraph = h.builder.Build(gCtx, h.config.SiteOwner)
		}
		return nil
	})
	g.Go(func() error {
		if session.Authenticated() && wantsPersonalGraph(opts.Trust) {
			env.PersonalGraph = h.builder.Build(gCtx, session.Pubkey)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return visibility.Env{}, err
	}
	if env.Mutes.Admin.Authors == nil {
		env.Mutes = moderation.Bundles{
			Admin:    moderation.NewListBundle(),
			Personal: moderation.NewListBundle(),
		}
	}
	return env, nil
}

// wantsPersonalGraph reports whether the trust mode can consult the
// viewer's own graph. Only the personal and combined modes do.
func wantsPersonalGraph(mode models.TrustMode) bool {
	return mode == models.TrustPersonalOnly || mode == models.TrustBoth
}

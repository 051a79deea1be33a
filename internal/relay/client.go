// Package relay fetches events from the nostr relay pool and converts them
// into the shapes the rest of corvid consumes. Every fetch is best-effort:
// a timeout or relay failure yields an empty result, never an error, so
// callers degrade gracefully when the network is flaky.
package relay

import (
	"context"
	"time"

	"tangled.org/corvid.social/corvid/internal/curated"
	"tangled.org/corvid.social/corvid/internal/metrics"
	"tangled.org/corvid.social/corvid/internal/models"
	"tangled.org/corvid.social/corvid/internal/moderation"
	"tangled.org/corvid.social/corvid/internal/thread"
	"tangled.org/corvid.social/corvid/internal/tracing"
	"tangled.org/corvid.social/corvid/internal/trust"

	"github.com/nbd-wtf/go-nostr"
	"github.com/rs/zerolog/log"
)

// KindFollows is the replaceable follow list kind (NIP-02).
const KindFollows = 3

// KindDeletion is the tombstone event kind (NIP-09).
const KindDeletion = 5

// KindArticle is the addressable long-form content kind (NIP-23).
const KindArticle = 30023

// Config holds relay pool settings.
type Config struct {
	// Relays are the read relays queried by every fetch.
	Relays []string

	// LocalRelay is the site's own relay. Events observed there are
	// marked local, which the source-scope filter keys on.
	LocalRelay string

	// ShortTimeout bounds best-effort discovery fetches.
	ShortTimeout time.Duration

	// LongTimeout bounds event queries.
	LongTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ShortTimeout <= 0 {
		c.ShortTimeout = 5 * time.Second
	}
	if c.LongTimeout <= 0 {
		c.LongTimeout = 30 * time.Second
	}
}

// Client wraps a shared relay pool. It satisfies trust.RelationSource,
// thread.Fetcher, and thread.StreamOpener.
type Client struct {
	pool *nostr.SimplePool
	cfg  Config
}

// NewClient creates a client whose pool connections live as long as ctx.
func NewClient(ctx context.Context, cfg Config) *Client {
	cfg.applyDefaults()
	return &Client{
		pool: nostr.NewSimplePool(ctx),
		cfg:  cfg,
	}
}

// Relays returns the configured read relay set.
func (c *Client) Relays() []string {
	return c.cfg.Relays
}

func observe(operation string, start time.Time, found bool) {
	status := "ok"
	if !found {
		status = "empty"
	}
	metrics.RelayFetchesTotal.WithLabelValues(operation, status).Inc()
	metrics.RelayFetchDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// FetchRelations retrieves an actor's current follow and mute sets, taking
// the newest revision of each list seen across the pool. Missing lists are
// simply empty.
func (c *Client) FetchRelations(ctx context.Context, pubkey string) trust.Relations {
	start := time.Now()
	ctx, span := tracing.RelaySpan(ctx, "relations", len(c.cfg.Relays))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.LongTimeout)
	defer cancel()

	filter := nostr.Filter{
		Kinds:   []int{KindFollows, moderation.KindMuteList},
		Authors: []string{pubkey},
	}

	latest := make(map[int]*nostr.Event)
	for re := range c.pool.SubManyEose(ctx, c.cfg.Relays, nostr.Filters{filter}) {
		if re.Event == nil {
			continue
		}
		if cur, ok := latest[re.Event.Kind]; !ok || re.Event.CreatedAt > cur.CreatedAt {
			latest[re.Event.Kind] = re.Event
		}
	}

	rel := trust.EmptyRelations()
	if ev := latest[KindFollows]; ev != nil {
		for _, pk := range taggedPubkeys(ev.Tags) {
			rel.Follows[pk] = struct{}{}
		}
	}
	if ev := latest[moderation.KindMuteList]; ev != nil {
		for _, pk := range taggedPubkeys(ev.Tags) {
			rel.Muted[pk] = struct{}{}
		}
	}

	observe("relations", start, len(latest) > 0)
	return rel
}

// FetchEvent retrieves a single event by id, or nil when no relay has it.
func (c *Client) FetchEvent(ctx context.Context, id string) *nostr.Event {
	start := time.Now()
	ctx, span := tracing.RelaySpan(ctx, "event", len(c.cfg.Relays))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.LongTimeout)
	defer cancel()

	re := c.pool.QuerySingle(ctx, c.cfg.Relays, nostr.Filter{
		IDs:   []string{id},
		Limit: 1,
	})
	observe("event", start, re != nil)
	if re == nil {
		return nil
	}
	return re.Event
}

// FetchCurated retrieves the curator's registry set for the given kind.
// A missing or unreadable set yields an empty registry.
func (c *Client) FetchCurated(ctx context.Context, curator string, kind curated.Kind) curated.Registry {
	start := time.Now()
	if curator == "" {
		observe("curated", start, false)
		return curated.Registry{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ShortTimeout)
	defer cancel()

	re := c.pool.QuerySingle(ctx, c.cfg.Relays, nostr.Filter{
		Kinds:   []int{curated.KindSet},
		Authors: []string{curator},
		Tags:    nostr.TagMap{"d": []string{kind.DTag()}},
		Limit:   1,
	})
	observe("curated", start, re != nil)
	if re == nil {
		return curated.Registry{}
	}
	return curated.FromEvent(re.Event, kind)
}

// FetchMuteLists assembles the admin and personal mute bundles. The admin
// bundle folds in the mute lists and the hard/illegal block sets of every
// site moderator; the personal bundle carries only the viewer's own mute
// list. An anonymous viewer gets an empty personal bundle.
func (c *Client) FetchMuteLists(ctx context.Context, admins []string, viewer string) moderation.Bundles {
	start := time.Now()
	ctx, span := tracing.RelaySpan(ctx, "mutelists", len(c.cfg.Relays))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.LongTimeout)
	defer cancel()

	bundles := moderation.Bundles{
		Admin:    moderation.NewListBundle(),
		Personal: moderation.NewListBundle(),
	}

	authors := make([]string, 0, len(admins)+1)
	authors = append(authors, admins...)
	if viewer != "" {
		authors = append(authors, viewer)
	}
	if len(authors) == 0 {
		observe("mutelists", start, false)
		return bundles
	}

	filter := nostr.Filter{
		Kinds:   []int{moderation.KindMuteList, moderation.KindSet},
		Authors: authors,
	}

	adminSet := make(map[string]struct{}, len(admins))
	for _, pk := range admins {
		adminSet[pk] = struct{}{}
	}

	// Replaceable lists: keep only the newest revision per author and list
	// identity before folding anything in.
	latest := make(map[listKey]*nostr.Event)
	for re := range c.pool.SubManyEose(ctx, c.cfg.Relays, nostr.Filters{filter}) {
		if re.Event == nil {
			continue
		}
		key := listKey{author: re.Event.PubKey, kind: re.Event.Kind, d: re.Event.Tags.GetD()}
		if cur, ok := latest[key]; !ok || re.Event.CreatedAt > cur.CreatedAt {
			latest[key] = re.Event
		}
	}

	for key, ev := range latest {
		if _, isAdmin := adminSet[key.author]; isAdmin {
			moderation.ApplyMuteList(&bundles.Admin, ev)
			moderation.ApplySet(&bundles.Admin, ev)
		}
		if key.author == viewer && ev.Kind == moderation.KindMuteList {
			moderation.ApplyMuteList(&bundles.Personal, ev)
		}
	}

	observe("mutelists", start, len(latest) > 0)
	return bundles
}

type listKey struct {
	author string
	kind   int
	d      string
}

// FetchDeletedIDs queries tombstones for the given items and returns the
// set of event ids confirmed deleted. A tombstone only counts when its
// author matches the deleted item's author.
func (c *Client) FetchDeletedIDs(ctx context.Context, items []models.Item) map[string]struct{} {
	start := time.Now()
	deleted := make(map[string]struct{})
	if len(items) == 0 {
		observe("deletions", start, false)
		return deleted
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.LongTimeout)
	defer cancel()

	byEventID := make(map[string]models.Item, len(items))
	byAddress := make(map[string]models.Item)
	ids := make([]string, 0, len(items))
	addresses := make([]string, 0, len(items))
	for _, it := range items {
		byEventID[it.ID] = it
		ids = append(ids, it.ID)
		if it.Address != "" {
			byAddress[it.Address] = it
			addresses = append(addresses, it.Address)
		}
	}

	filter := nostr.Filter{
		Kinds: []int{KindDeletion},
		Tags:  nostr.TagMap{"e": ids},
	}
	filters := nostr.Filters{filter}
	if len(addresses) > 0 {
		filters = append(filters, nostr.Filter{
			Kinds: []int{KindDeletion},
			Tags:  nostr.TagMap{"a": addresses},
		})
	}

	for re := range c.pool.SubManyEose(ctx, c.cfg.Relays, filters) {
		if re.Event == nil {
			continue
		}
		for _, tag := range re.Event.Tags {
			if len(tag) < 2 {
				continue
			}
			switch tag[0] {
			case "e":
				if it, ok := byEventID[tag[1]]; ok && it.Author == re.Event.PubKey {
					deleted[it.ID] = struct{}{}
				}
			case "a":
				if it, ok := byAddress[tag[1]]; ok && it.Author == re.Event.PubKey {
					deleted[it.ID] = struct{}{}
				}
			}
		}
	}

	observe("deletions", start, len(deleted) > 0)
	return deleted
}

// FetchArticles retrieves recent long-form content from the pool, newest
// revision per event id, converted and deduplicated.
func (c *Client) FetchArticles(ctx context.Context, limit int) []models.Item {
	start := time.Now()
	ctx, span := tracing.RelaySpan(ctx, "articles", len(c.cfg.Relays))
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.LongTimeout)
	defer cancel()

	filter := nostr.Filter{
		Kinds: []int{KindArticle},
		Limit: limit,
	}

	var items []models.Item
	for re := range c.pool.SubManyEose(ctx, c.cfg.Relays, nostr.Filters{filter}) {
		if re.Event == nil {
			continue
		}
		local := re.Relay != nil && re.Relay.URL == c.cfg.LocalRelay
		items = append(items, ItemFromEvent(re.Event, local))
	}

	items = models.Dedupe(items)
	observe("articles", start, len(items) > 0)
	log.Debug().Int("count", len(items)).Msg("relay: fetched articles")
	return items
}

// OpenReplyStream subscribes to documents referencing the target, matching
// both its event id and, for addressable content, its stable address.
func (c *Client) OpenReplyStream(ctx context.Context, target thread.Target) (<-chan *nostr.Event, error) {
	filters := nostr.Filters{{
		Tags: nostr.TagMap{"e": []string{target.EventID}},
	}}
	if target.Addressable() {
		filters = append(filters, nostr.Filter{
			Tags: nostr.TagMap{"a": []string{target.Address}},
		})
	}

	sub := c.pool.SubMany(ctx, c.cfg.Relays, filters)
	out := make(chan *nostr.Event)
	go func() {
		defer close(out)
		for re := range sub {
			if re.Event == nil {
				continue
			}
			select {
			case out <- re.Event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func taggedPubkeys(tags nostr.Tags) []string {
	var pks []string
	for _, tag := range tags {
		if len(tag) >= 2 && tag[0] == "p" && nostr.IsValidPublicKey(tag[1]) {
			pks = append(pks, tag[1])
		}
	}
	return pks
}

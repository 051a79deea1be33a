package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"tangled.org/corvid.social/corvid/internal/curated"
	"tangled.org/corvid.social/corvid/internal/models"
	"tangled.org/corvid.social/corvid/internal/moderation"
	"tangled.org/corvid.social/corvid/internal/thread"
	"tangled.org/corvid.social/corvid/internal/trust"

	"github.com/nbd-wtf/go-nostr"
)

// FakeFetcher implements Fetcher with overridable function fields.
// Unset fields return empty values, mirroring the real client's soft-fail
// behavior.
type FakeFetcher struct {
	FetchRelationsFunc  func(ctx context.Context, pubkey string) trust.Relations
	FetchEventFunc      func(ctx context.Context, id string) *nostr.Event
	FetchCuratedFunc    func(ctx context.Context, curator string, kind curated.Kind) curated.Registry
	FetchMuteListsFunc  func(ctx context.Context, admins []string, viewer string) moderation.Bundles
	FetchDeletedIDsFunc func(ctx context.Context, items []models.Item) map[string]struct{}
	FetchArticlesFunc   func(ctx context.Context, limit int) []models.Item
	OpenReplyStreamFunc func(ctx context.Context, target thread.Target) (<-chan *nostr.Event, error)
}

func (f *FakeFetcher) FetchRelations(ctx context.Context, pubkey string) trust.Relations {
	if f.FetchRelationsFunc != nil {
		return f.FetchRelationsFunc(ctx, pubkey)
	}
	return trust.EmptyRelations()
}

func (f *FakeFetcher) FetchEvent(ctx context.Context, id string) *nostr.Event {
	if f.FetchEventFunc != nil {
		return f.FetchEventFunc(ctx, id)
	}
	return nil
}

func (f *FakeFetcher) FetchCurated(ctx context.Context, curator string, kind curated.Kind) curated.Registry {
	if f.FetchCuratedFunc != nil {
		return f.FetchCuratedFunc(ctx, curator, kind)
	}
	return curated.Registry{}
}

func (f *FakeFetcher) FetchMuteLists(ctx context.Context, admins []string, viewer string) moderation.Bundles {
	if f.FetchMuteListsFunc != nil {
		return f.FetchMuteListsFunc(ctx, admins, viewer)
	}
	return moderation.Bundles{
		Admin:    moderation.NewListBundle(),
		Personal: moderation.NewListBundle(),
	}
}

func (f *FakeFetcher) FetchDeletedIDs(ctx context.Context, items []models.Item) map[string]struct{} {
	if f.FetchDeletedIDsFunc != nil {
		return f.FetchDeletedIDsFunc(ctx, items)
	}
	return map[string]struct{}{}
}

func (f *FakeFetcher) FetchArticles(ctx context.Context, limit int) []models.Item {
	if f.FetchArticlesFunc != nil {
		return f.FetchArticlesFunc(ctx, limit)
	}
	return nil
}

func (f *FakeFetcher) OpenReplyStream(ctx context.Context, target thread.Target) (<-chan *nostr.Event, error) {
	if f.OpenReplyStreamFunc != nil {
		return f.OpenReplyStreamFunc(ctx, target)
	}
	ch := make(chan *nostr.Event)
	close(ch)
	return ch, nil
}

// Well-known test identities.
var (
	TestOwner  = strings.Repeat("0", 63) + "a"
	TestViewer = strings.Repeat("1", 63) + "b"
	TestAuthor = strings.Repeat("2", 63) + "c"
)

// TestFixtures contains sample data for testing
type TestFixtures struct {
	CleanItem models.Item
	NSFWItem  models.Item
	OldItem   models.Item
}

// NewTestFixtures creates a set of sample test data
func NewTestFixtures() *TestFixtures {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	return &TestFixtures{
		CleanItem: models.Item{
			ID:          strings.Repeat("c", 64),
			Address:     "30023:" + TestAuthor + ":clean-post",
			Author:      TestAuthor,
			PublishedAt: base,
		},
		NSFWItem: models.Item{
			ID:          strings.Repeat("d", 64),
			Address:     "30023:" + TestAuthor + ":nsfw-post",
			Author:      TestAuthor,
			NSFW:        true,
			PublishedAt: base.Add(time.Hour),
		},
		OldItem: models.Item{
			ID:          strings.Repeat("e", 64),
			Author:      TestAuthor,
			PublishedAt: base.Add(-24 * time.Hour),
		},
	}
}

// TestContext bundles a handler wired to fakes.
type TestContext struct {
	Handler  *Handler
	Fetcher  *FakeFetcher
	Fixtures *TestFixtures
}

// NewTestContext creates a handler whose site owner follows TestAuthor, so
// fixture items pass the default site trust gate.
func NewTestContext() *TestContext {
	fetcher := &FakeFetcher{
		FetchRelationsFunc: func(_ context.Context, pubkey string) trust.Relations {
			rel := trust.EmptyRelations()
			if pubkey == TestOwner {
				rel.Follows[TestAuthor] = struct{}{}
			}
			return rel
		},
	}

	h := NewHandler(fetcher, Config{
		SiteOwner:         TestOwner,
		SiteThreshold:     1,
		PersonalThreshold: 1,
	})

	return &TestContext{
		Handler:  h,
		Fetcher:  fetcher,
		Fixtures: NewTestFixtures(),
	}
}

// NewViewerRequest builds a request carrying the verified viewer header.
func NewViewerRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(HeaderViewerPubkey, TestViewer)
	return req
}

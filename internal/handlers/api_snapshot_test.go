package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tangled.org/corvid.social/corvid/internal/models"

	"github.com/nbd-wtf/go-nostr"
	"github.com/ptdewey/shutter"
)

// TestFeedAPI_Snapshot pins the /api/feed response format.
func TestFeedAPI_Snapshot(t *testing.T) {
	tc := NewTestContext()
	tc.Fetcher.FetchArticlesFunc = func(context.Context, int) []models.Item {
		return []models.Item{tc.Fixtures.CleanItem, tc.Fixtures.NSFWItem}
	}

	req := httptest.NewRequest("GET", "/api/feed?nsfw=show", nil)
	rec := httptest.NewRecorder()

	tc.Handler.HandleFeed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	shutter.SnapJSON(t, "api_feed", rec.Body.String())
}

// TestTrustAPI_Snapshot pins the /api/trust/{pubkey} response format.
func TestTrustAPI_Snapshot(t *testing.T) {
	tc := NewTestContext()

	req := httptest.NewRequest("GET", "/api/trust/"+TestAuthor, nil)
	req.SetPathValue("pubkey", TestAuthor)
	rec := httptest.NewRecorder()

	tc.Handler.HandleTrust(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	shutter.SnapJSON(t, "api_trust", rec.Body.String())
}

// TestThreadAPI_Snapshot pins the /api/thread response format.
func TestThreadAPI_Snapshot(t *testing.T) {
	tc := NewTestContext()
	rootID := tc.Fixtures.CleanItem.ID
	childID := tc.Fixtures.NSFWItem.ID

	events := map[string]*nostr.Event{
		rootID:  {ID: rootID, PubKey: TestAuthor, Content: "original post"},
		childID: {ID: childID, PubKey: TestAuthor, Content: "a reply", Tags: nostr.Tags{{"e", rootID}}},
	}
	tc.Fetcher.FetchEventFunc = func(_ context.Context, id string) *nostr.Event {
		return events[id]
	}

	req := httptest.NewRequest("GET", "/api/thread?id="+childID, nil)
	rec := httptest.NewRecorder()

	tc.Handler.HandleThread(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	shutter.SnapJSON(t, "api_thread", rec.Body.String())
}

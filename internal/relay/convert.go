package relay

import (
	"fmt"
	"strconv"
	"time"

	"tangled.org/corvid.social/corvid/internal/models"

	"github.com/nbd-wtf/go-nostr"
)

// ItemFromEvent converts a content event into an Item. Addressable kinds
// get their stable "kind:pubkey:d" address; plain events leave it empty.
// The published_at tag, when present and sane, dates the first revision,
// with the event timestamp recording the edit.
func ItemFromEvent(ev *nostr.Event, local bool) models.Item {
	item := models.Item{
		ID:          ev.ID,
		Author:      ev.PubKey,
		NSFW:        hasContentWarning(ev.Tags),
		Repost:      isRepost(ev),
		Local:       local,
		PublishedAt: ev.CreatedAt.Time(),
		Tags:        ev.Tags,
	}

	if isAddressableKind(ev.Kind) {
		item.Address = fmt.Sprintf("%d:%s:%s", ev.Kind, ev.PubKey, ev.Tags.GetD())
	}

	if published, ok := publishedAt(ev.Tags); ok && published.Before(item.PublishedAt) {
		item.EditedAt = item.PublishedAt
		item.PublishedAt = published
	}

	return item
}

func isAddressableKind(kind int) bool {
	return kind >= 30000 && kind < 40000
}

// hasContentWarning reports an author self-flag: either a content-warning
// tag (NIP-36) or an explicit nsfw topic tag.
func hasContentWarning(tags nostr.Tags) bool {
	for _, tag := range tags {
		if len(tag) == 0 {
			continue
		}
		if tag[0] == "content-warning" {
			return true
		}
		if tag[0] == "t" && len(tag) >= 2 && tag[1] == "nsfw" {
			return true
		}
	}
	return false
}

// isRepost reports content wrapping or mirroring another author's work: a
// repost kind, or a proxy tag marking content bridged from elsewhere.
func isRepost(ev *nostr.Event) bool {
	if ev.Kind == nostr.KindRepost || ev.Kind == nostr.KindGenericRepost {
		return true
	}
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == "proxy" {
			return true
		}
	}
	return false
}

// publishedAt parses the published_at tag as unix seconds. Zero, negative,
// and unparseable values are ignored.
func publishedAt(tags nostr.Tags) (time.Time, bool) {
	for _, tag := range tags {
		if len(tag) >= 2 && tag[0] == "published_at" {
			secs, err := strconv.ParseInt(tag[1], 10, 64)
			if err != nil || secs <= 0 {
				return time.Time{}, false
			}
			return time.Unix(secs, 0).UTC(), true
		}
	}
	return time.Time{}, false
}

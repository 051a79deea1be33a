package moderation

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
)

func pk(c byte) string { return strings.Repeat(string(c), 64) }

func TestListBundle_Tiers(t *testing.T) {
	b := NewListBundle()
	b.Authors.Add(pk('a'))
	b.Items.Add("event-regular")
	b.HardAuthors.Add(pk('b'))
	b.IllegalItems.Add("event-illegal")

	t.Run("regular tier", func(t *testing.T) {
		assert.True(t, b.BlocksRegular(pk('a')))
		assert.True(t, b.BlocksRegular(pk('z'), "event-regular"))
		assert.False(t, b.BlocksRegular(pk('z'), "other"))
	})

	t.Run("hard tier", func(t *testing.T) {
		assert.True(t, b.BlocksHard(pk('b')))
		assert.False(t, b.BlocksHard(pk('a')))
	})

	t.Run("illegal tier", func(t *testing.T) {
		assert.True(t, b.BlocksIllegal(pk('z'), "event-illegal"))
		assert.False(t, b.BlocksIllegal(pk('z'), "event-regular"))
	})

	t.Run("any tier", func(t *testing.T) {
		assert.True(t, b.BlocksAny(pk('a')))
		assert.True(t, b.BlocksAny(pk('b')))
		assert.True(t, b.BlocksAny(pk('z'), "event-illegal"))
		assert.False(t, b.BlocksAny(pk('z'), "unknown"))
	})

	t.Run("empty ids are ignored", func(t *testing.T) {
		b2 := NewListBundle()
		assert.False(t, b2.BlocksRegular(pk('z'), ""))
	})
}

func TestSet_NilSafe(t *testing.T) {
	var s Set
	assert.False(t, s.Has("anything"))
}

func TestApplyMuteList(t *testing.T) {
	b := NewListBundle()
	ev := &nostr.Event{
		Kind: KindMuteList,
		Tags: nostr.Tags{
			{"p", pk('a')},
			{"p", "malformed"},
			{"e", "muted-event"},
			{"a", "30023:" + pk('b') + ":post"},
			{"x", "filehash123"},
			{"p"}, // short tag
		},
	}

	ApplyMuteList(&b, ev)

	assert.True(t, b.Authors.Has(pk('a')))
	assert.False(t, b.Authors.Has("malformed"))
	assert.True(t, b.Items.Has("muted-event"))
	assert.True(t, b.Items.Has("30023:"+pk('b')+":post"))
	assert.True(t, b.FileHashes.Has("filehash123"))
}

func TestApplyMuteList_WrongKind(t *testing.T) {
	b := NewListBundle()
	ApplyMuteList(&b, &nostr.Event{Kind: 1, Tags: nostr.Tags{{"p", pk('a')}}})
	assert.Empty(t, b.Authors)
	ApplyMuteList(&b, nil)
	assert.Empty(t, b.Authors)
}

func TestApplySet_RoutesByDTag(t *testing.T) {
	b := NewListBundle()

	hard := &nostr.Event{
		Kind: KindSet,
		Tags: nostr.Tags{
			{"d", DTagHardBlock},
			{"p", pk('h')},
			{"e", "hard-event"},
		},
	}
	illegal := &nostr.Event{
		Kind: KindSet,
		Tags: nostr.Tags{
			{"d", DTagIllegalBlock},
			{"p", pk('i')},
			{"a", "30023:" + pk('i') + ":bad"},
		},
	}
	unknown := &nostr.Event{
		Kind: KindSet,
		Tags: nostr.Tags{
			{"d", "someone-elses-list"},
			{"p", pk('u')},
		},
	}

	ApplySet(&b, hard)
	ApplySet(&b, illegal)
	ApplySet(&b, unknown)

	assert.True(t, b.HardAuthors.Has(pk('h')))
	assert.True(t, b.HardItems.Has("hard-event"))
	assert.True(t, b.IllegalAuthors.Has(pk('i')))
	assert.True(t, b.IllegalItems.Has("30023:"+pk('i')+":bad"))
	assert.False(t, b.Authors.Has(pk('u')))
	assert.False(t, b.HardAuthors.Has(pk('u')))
	assert.False(t, b.IllegalAuthors.Has(pk('u')))
}

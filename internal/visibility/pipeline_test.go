package visibility

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tangled.org/corvid.social/corvid/internal/curated"
	"tangled.org/corvid.social/corvid/internal/models"
	"tangled.org/corvid.social/corvid/internal/moderation"
	"tangled.org/corvid.social/corvid/internal/trust"
)

func pk(c byte) string { return strings.Repeat(string(c), 64) }

func ids(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// openEnv is an environment that blocks nothing and trusts everyone.
func openEnv() Env {
	return Env{
		CuratedNSFW:   curated.Registry{},
		CuratedRepost: curated.Registry{},
		Mutes: moderation.Bundles{
			Admin:    moderation.NewListBundle(),
			Personal: moderation.NewListBundle(),
		},
		DeletedIDs:    map[string]struct{}{},
		SiteGraph:     trust.Graph{},
		PersonalGraph: trust.Graph{},
	}
}

func showAll() models.FilterOptions {
	return models.FilterOptions{
		Sort:       models.SortDescending,
		NSFW:       models.FlagShow,
		Repost:     models.FlagShow,
		Moderation: models.ModerationUnmoderated,
		Trust:      models.TrustNone,
	}
}

// adminSession is eligible for every restricted mode.
func adminSession() models.Session {
	return models.Session{Pubkey: pk('v'), IsAdmin: true}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	env := openEnv()
	env.CuratedNSFW = curated.Registry{"30023:p:x": {}}

	items := []models.Item{
		{ID: "a", Address: "30023:p:x", PublishedAt: time.Unix(1, 0)},
		{ID: "b", PublishedAt: time.Unix(2, 0)},
	}

	opts := showAll()
	out := Filter(items, adminSession(), opts, env)

	// The overlay flagged the output copy, never the input.
	assert.True(t, out[1].CuratedNSFW) // sorted desc: b first, a second
	assert.False(t, items[0].CuratedNSFW)
	assert.Equal(t, "a", items[0].ID)
}

func TestFilter_DeletedStage(t *testing.T) {
	env := openEnv()
	env.DeletedIDs = map[string]struct{}{"gone": {}}

	items := []models.Item{
		{ID: "gone", PublishedAt: time.Unix(2, 0)},
		{ID: "kept", PublishedAt: time.Unix(1, 0)},
	}

	out := Filter(items, adminSession(), showAll(), env)
	assert.Equal(t, []string{"kept"}, ids(out))
}

func TestFilter_NSFWModes(t *testing.T) {
	// Item not self-flagged, but its addressable id is in the curated
	// registry.
	item := models.Item{ID: "a", Address: "30023:p:x", Author: pk('a'), PublishedAt: time.Unix(1, 0)}
	env := openEnv()
	env.CuratedNSFW = curated.Registry{"30023:p:x": {}}

	opts := showAll()

	t.Run("hide excludes curated-flagged", func(t *testing.T) {
		opts.NSFW = models.FlagHide
		out := Filter([]models.Item{item}, adminSession(), opts, env)
		assert.Empty(t, out)
	})

	t.Run("show includes and displays as nsfw", func(t *testing.T) {
		opts.NSFW = models.FlagShow
		out := Filter([]models.Item{item}, adminSession(), opts, env)
		assert.Len(t, out, 1)
		assert.True(t, out[0].CuratedNSFW)
	})

	t.Run("only includes curated-flagged", func(t *testing.T) {
		opts.NSFW = models.FlagOnly
		out := Filter([]models.Item{item}, adminSession(), opts, env)
		assert.Len(t, out, 1)
		assert.True(t, out[0].CuratedNSFW)
	})

	t.Run("hide keeps unflagged", func(t *testing.T) {
		opts.NSFW = models.FlagHide
		clean := models.Item{ID: "b", Address: "30023:p:clean", PublishedAt: time.Unix(1, 0)}
		out := Filter([]models.Item{clean}, adminSession(), opts, env)
		assert.Equal(t, []string{"b"}, ids(out))
		assert.False(t, out[0].CuratedNSFW)
	})

	t.Run("only keeps self-flagged without registry hit", func(t *testing.T) {
		opts.NSFW = models.FlagOnly
		self := models.Item{ID: "c", NSFW: true, PublishedAt: time.Unix(1, 0)}
		out := Filter([]models.Item{self}, adminSession(), opts, env)
		assert.Equal(t, []string{"c"}, ids(out))
		assert.False(t, out[0].CuratedNSFW)
	})
}

func TestFilter_OnlyIsSubsetOfShow(t *testing.T) {
	env := openEnv()
	env.CuratedNSFW = curated.Registry{"30023:p:1": {}}
	env.CuratedRepost = curated.Registry{"30023:p:2": {}}

	items := []models.Item{
		{ID: "a", Address: "30023:p:1", PublishedAt: time.Unix(4, 0)},
		{ID: "b", NSFW: true, PublishedAt: time.Unix(3, 0)},
		{ID: "c", Address: "30023:p:2", PublishedAt: time.Unix(2, 0)},
		{ID: "d", Repost: true, PublishedAt: time.Unix(1, 0)},
		{ID: "e", PublishedAt: time.Unix(5, 0)},
	}

	for _, axis := range []string{"nsfw", "repost"} {
		showOpts, onlyOpts := showAll(), showAll()
		if axis == "nsfw" {
			showOpts.NSFW, onlyOpts.NSFW = models.FlagShow, models.FlagOnly
		} else {
			showOpts.Repost, onlyOpts.Repost = models.FlagShow, models.FlagOnly
		}

		show := ids(Filter(items, adminSession(), showOpts, env))
		only := ids(Filter(items, adminSession(), onlyOpts, env))

		for _, id := range only {
			assert.Contains(t, show, id, "axis %s: only-mode output must be a subset of show-mode", axis)
		}
		assert.Less(t, len(only), len(show), "axis %s", axis)
	}
}

func TestFilter_PersonalMuteDominates(t *testing.T) {
	// An item whose author is personally muted is excluded under
	// moderated mode regardless of the other axes.
	muted := pk('m')
	env := openEnv()
	env.Mutes.Personal.Authors.Add(muted)

	item := models.Item{ID: "a", Author: muted, NSFW: true, Repost: true, PublishedAt: time.Unix(1, 0)}

	modes := []models.FilterOptions{
		{NSFW: models.FlagShow, Repost: models.FlagShow, Trust: models.TrustNone, Moderation: models.ModerationModerated},
		{NSFW: models.FlagOnly, Repost: models.FlagOnly, Trust: models.TrustNone, Moderation: models.ModerationModerated},
		{NSFW: models.FlagShow, Repost: models.FlagHide, Trust: models.TrustSiteOnly, Moderation: models.ModerationModerated},
	}
	session := adminSession()
	env.SiteGraph = trust.Graph{muted: 10}

	for i, opts := range modes {
		out := Filter([]models.Item{item}, session, opts, env)
		assert.Empty(t, out, "variant %d", i)
	}
}

func TestFilter_TrustModes(t *testing.T) {
	trusted := pk('t')
	unknown := pk('u')
	env := openEnv()
	env.SiteGraph = trust.Graph{trusted: 5}
	env.SiteThreshold = 1

	items := []models.Item{
		{ID: "trusted", Author: trusted, PublishedAt: time.Unix(2, 0)},
		{ID: "unknown", Author: unknown, PublishedAt: time.Unix(1, 0)},
	}

	opts := showAll()

	t.Run("site-only keeps passing items", func(t *testing.T) {
		opts.Trust = models.TrustSiteOnly
		out := Filter(items, adminSession(), opts, env)
		assert.Equal(t, []string{"trusted"}, ids(out))
	})

	t.Run("anonymous forces site-only", func(t *testing.T) {
		opts.Trust = models.TrustNone
		out := Filter(items, models.Session{}, opts, env)
		assert.Equal(t, []string{"trusted"}, ids(out))
	})

	t.Run("ineligible viewer downgrades to site-only", func(t *testing.T) {
		opts.Trust = models.TrustNone
		out := Filter(items, models.Session{Pubkey: pk('v')}, opts, env)
		assert.Equal(t, []string{"trusted"}, ids(out))
	})

	t.Run("eligible none keeps everything", func(t *testing.T) {
		opts.Trust = models.TrustNone
		out := Filter(items, adminSession(), opts, env)
		assert.Equal(t, []string{"trusted", "unknown"}, ids(out))
	})

	t.Run("eligible exclude inverts the site check", func(t *testing.T) {
		opts.Trust = models.TrustExclude
		out := Filter(items, adminSession(), opts, env)
		assert.Equal(t, []string{"unknown"}, ids(out))
	})

	t.Run("personal-only uses personal graph when eligible", func(t *testing.T) {
		opts.Trust = models.TrustPersonalOnly
		envP := env
		envP.PersonalGraph = trust.Graph{unknown: 3}
		envP.PersonalThreshold = 1
		out := Filter(items, adminSession(), opts, envP)
		assert.Equal(t, []string{"unknown"}, ids(out))
	})

	t.Run("both requires both graphs", func(t *testing.T) {
		opts.Trust = models.TrustBoth
		envB := env
		envB.PersonalGraph = trust.Graph{trusted: 2, unknown: 2}
		envB.PersonalThreshold = 1
		out := Filter(items, adminSession(), opts, envB)
		assert.Equal(t, []string{"trusted"}, ids(out))
	})
}

func TestFilter_ModerationModes(t *testing.T) {
	blockedAuthor := pk('b')
	hardAuthor := pk('h')
	illegalAuthor := pk('i')
	cleanAuthor := pk('c')

	env := openEnv()
	env.Mutes.Admin.Authors.Add(blockedAuthor)
	env.Mutes.Admin.HardAuthors.Add(hardAuthor)
	env.Mutes.Admin.IllegalAuthors.Add(illegalAuthor)

	items := []models.Item{
		{ID: "blocked", Author: blockedAuthor, PublishedAt: time.Unix(4, 0)},
		{ID: "hard", Author: hardAuthor, PublishedAt: time.Unix(3, 0)},
		{ID: "illegal", Author: illegalAuthor, PublishedAt: time.Unix(2, 0)},
		{ID: "clean", Author: cleanAuthor, PublishedAt: time.Unix(1, 0)},
	}

	opts := showAll()

	t.Run("unmoderated removes all admin tiers", func(t *testing.T) {
		opts.Moderation = models.ModerationUnmoderated
		out := Filter(items, models.Session{Pubkey: pk('v')}, opts, env)
		assert.Equal(t, []string{"clean"}, ids(out))
	})

	t.Run("fully-unmoderated for eligible skips dismissable tiers only", func(t *testing.T) {
		opts.Moderation = models.ModerationFullyUnmoderated
		out := Filter(items, adminSession(), opts, env)
		assert.Equal(t, []string{"blocked", "hard", "clean"}, ids(out))
	})

	t.Run("fully-unmoderated for ineligible behaves like unmoderated", func(t *testing.T) {
		opts.Moderation = models.ModerationFullyUnmoderated
		out := Filter(items, models.Session{Pubkey: pk('v')}, opts, env)
		assert.Equal(t, []string{"clean"}, ids(out))
	})

	t.Run("only-blocked for admins inverts", func(t *testing.T) {
		opts.Moderation = models.ModerationOnlyBlocked
		out := Filter(items, adminSession(), opts, env)
		assert.Equal(t, []string{"blocked", "hard", "illegal"}, ids(out))
	})

	t.Run("only-blocked for non-admins downgrades to moderated", func(t *testing.T) {
		opts.Moderation = models.ModerationOnlyBlocked
		out := Filter(items, models.Session{Pubkey: pk('v')}, opts, env)
		assert.Equal(t, []string{"clean"}, ids(out))
	})

	t.Run("moderated also applies personal list", func(t *testing.T) {
		opts.Moderation = models.ModerationModerated
		envP := openEnv()
		envP.Mutes.Personal.Items.Add("clean")
		out := Filter(items, models.Session{Pubkey: pk('v')}, opts, envP)
		assert.NotContains(t, ids(out), "clean")
	})
}

func TestFilter_ModeratedPersonalContentID(t *testing.T) {
	env := openEnv()
	env.Mutes.Personal.Items.Add("30023:" + pk('a') + ":post")

	item := models.Item{
		ID:          "ev",
		Address:     "30023:" + pk('a') + ":post",
		Author:      pk('a'),
		PublishedAt: time.Unix(1, 0),
	}

	opts := showAll()
	opts.Moderation = models.ModerationModerated

	out := Filter([]models.Item{item}, models.Session{Pubkey: pk('v')}, opts, env)
	assert.Empty(t, out)
}

func TestFilter_SortStage(t *testing.T) {
	items := []models.Item{
		{ID: "b", PublishedAt: time.Unix(2, 0)},
		{ID: "a1", PublishedAt: time.Unix(1, 0)},
		{ID: "c", PublishedAt: time.Unix(3, 0)},
		{ID: "a2", PublishedAt: time.Unix(1, 0)},
	}

	opts := showAll()

	t.Run("descending", func(t *testing.T) {
		opts.Sort = models.SortDescending
		out := Filter(items, adminSession(), opts, openEnv())
		assert.Equal(t, []string{"c", "b", "a1", "a2"}, ids(out))
	})

	t.Run("ascending keeps tie order", func(t *testing.T) {
		opts.Sort = models.SortAscending
		out := Filter(items, adminSession(), opts, openEnv())
		assert.Equal(t, []string{"a1", "a2", "b", "c"}, ids(out))
	})
}

func TestFilter_IllegalBlocksNeverSkippable(t *testing.T) {
	illegal := pk('i')
	env := openEnv()
	env.Mutes.Admin.IllegalAuthors.Add(illegal)

	item := models.Item{ID: "a", Author: illegal, PublishedAt: time.Unix(1, 0)}

	for _, mode := range []models.ModerationMode{
		models.ModerationModerated,
		models.ModerationUnmoderated,
		models.ModerationFullyUnmoderated,
	} {
		opts := showAll()
		opts.Moderation = mode
		out := Filter([]models.Item{item}, adminSession(), opts, env)
		assert.Empty(t, out, "mode %s", mode)
	}
}

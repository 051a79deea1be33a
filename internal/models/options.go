package models

// Filter mode constants for the visibility pipeline.
// These mirror the dropdowns exposed by the presentation layer.

// SortOrder controls the final ordering of filtered items.
type SortOrder string

const (
	SortDescending SortOrder = "desc"
	SortAscending  SortOrder = "asc"
)

// FlagMode controls how a flag axis (nsfw, repost) is filtered.
type FlagMode string

const (
	FlagHide FlagMode = "hide"
	FlagShow FlagMode = "show"
	FlagOnly FlagMode = "only"
)

// ModerationMode controls how mute lists are applied.
type ModerationMode string

const (
	// ModerationModerated applies admin lists and the viewer's personal
	// mute list. This is the default.
	ModerationModerated ModerationMode = "moderated"

	// ModerationUnmoderated applies admin lists but not the personal one.
	ModerationUnmoderated ModerationMode = "unmoderated"

	// ModerationFullyUnmoderated skips dismissable admin lists too.
	// Requires an eligible viewer; illegal blocks are still applied.
	ModerationFullyUnmoderated ModerationMode = "fully-unmoderated"

	// ModerationOnlyBlocked inverts the filter to show only blocked
	// content. Admin-eligible viewers only.
	ModerationOnlyBlocked ModerationMode = "only-blocked"
)

// TrustMode controls which trust graph gates content.
type TrustMode string

const (
	TrustSiteOnly     TrustMode = "site"
	TrustPersonalOnly TrustMode = "personal"
	TrustBoth         TrustMode = "both"
	TrustNone         TrustMode = "none"
	TrustExclude      TrustMode = "exclude"
)

// SourceScope restricts which relays items may originate from.
type SourceScope string

const (
	ScopeAll   SourceScope = "all"
	ScopeLocal SourceScope = "local"
)

// FilterOptions selects the behavior of the visibility pipeline.
type FilterOptions struct {
	Sort       SortOrder      `json:"sort"`
	NSFW       FlagMode       `json:"nsfw"`
	Repost     FlagMode       `json:"repost"`
	Moderation ModerationMode `json:"moderation"`
	Trust      TrustMode      `json:"trust"`
	Scope      SourceScope    `json:"scope"`
}

// DefaultFilterOptions returns the options applied when a viewer has not
// expressed a preference.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		Sort:       SortDescending,
		NSFW:       FlagHide,
		Repost:     FlagShow,
		Moderation: ModerationModerated,
		Trust:      TrustSiteOnly,
		Scope:      ScopeAll,
	}
}

// Normalize replaces unknown mode values with their defaults so a stored or
// user-supplied option set can never select an undefined behavior.
func (o FilterOptions) Normalize() FilterOptions {
	def := DefaultFilterOptions()
	switch o.Sort {
	case SortAscending, SortDescending:
	default:
		o.Sort = def.Sort
	}
	switch o.NSFW {
	case FlagHide, FlagShow, FlagOnly:
	default:
		o.NSFW = def.NSFW
	}
	switch o.Repost {
	case FlagHide, FlagShow, FlagOnly:
	default:
		o.Repost = def.Repost
	}
	switch o.Moderation {
	case ModerationModerated, ModerationUnmoderated, ModerationFullyUnmoderated, ModerationOnlyBlocked:
	default:
		o.Moderation = def.Moderation
	}
	switch o.Trust {
	case TrustSiteOnly, TrustPersonalOnly, TrustBoth, TrustNone, TrustExclude:
	default:
		o.Trust = def.Trust
	}
	switch o.Scope {
	case ScopeAll, ScopeLocal:
	default:
		o.Scope = def.Scope
	}
	return o
}

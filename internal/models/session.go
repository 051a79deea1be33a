package models

// Session carries the viewer's identity and role flags into the visibility
// pipeline. It is built per request; an anonymous viewer has an empty Pubkey.
type Session struct {
	// Pubkey is the viewer's hex public key. Empty when anonymous.
	Pubkey string `json:"pubkey,omitempty"`

	// IsOwner is true when the viewer is looking at their own content.
	IsOwner bool `json:"is_owner,omitempty"`

	// IsAdmin is true when the viewer holds a site moderator identity.
	IsAdmin bool `json:"is_admin,omitempty"`

	// EnhancedModeration unlocks the fully-unmoderated and only-blocked
	// moderation modes for non-admin viewers who opted in.
	EnhancedModeration bool `json:"enhanced_moderation,omitempty"`

	// EnhancedTrust unlocks the personal/none/exclude trust modes.
	EnhancedTrust bool `json:"enhanced_trust,omitempty"`
}

// Authenticated reports whether the viewer is signed in.
func (s Session) Authenticated() bool {
	return s.Pubkey != ""
}

// TrustEligible reports whether the viewer may use trust modes beyond the
// site-wide graph.
func (s Session) TrustEligible() bool {
	return s.IsAdmin || s.IsOwner || s.EnhancedTrust
}

// ModerationEligible reports whether the viewer may relax admin moderation.
func (s Session) ModerationEligible() bool {
	return s.IsAdmin || s.IsOwner || s.EnhancedModeration
}

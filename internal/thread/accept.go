package thread

// ShouldAccept decides whether a candidate document with the given
// references is a direct reply to the target. The rules reproduce the
// marker precedence exactly, including the last-tag-wins fallback for the
// older unmarked tagging convention; downstream behavior depends on these
// tie-breaks, so do not "fix" them.
func ShouldAccept(refs []Ref, target Target) bool {
	if len(refs) == 0 {
		return false
	}

	// Any reply-marked reference present: only the last one counts.
	// Earlier reply markers and all root markers are ignored.
	marked := false
	for i := len(refs) - 1; i >= 0; i-- {
		if refs[i].Kind == RefReply {
			return refs[i].ID == target.EventID
		}
		if refs[i].Kind != RefPositional {
			marked = true
		}
	}

	var positional []Ref
	for _, r := range refs {
		if r.Kind == RefPositional {
			positional = append(positional, r)
		}
	}

	switch {
	case len(positional) == 1:
		// A single unmarked reference replies to an addressable target
		// regardless of which revision it names.
		return target.Addressable() || positional[0].ID == target.EventID
	case len(positional) > 1 && !marked:
		// Old convention: the last positional reference is the parent.
		return positional[len(positional)-1].ID == target.EventID
	default:
		return false
	}
}

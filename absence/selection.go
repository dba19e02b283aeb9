package absence

// =============================================================================
// SELECTION - Session-scoped "currently selected request"
// =============================================================================

// Selection tracks which request a user's interaction session is focused
// on, so that a subsequent approve/deny/cancel knows its subject. It is a
// plain value owned by one session's caller. It must never be shared
// across concurrent actors or held as process-wide state.
type Selection struct {
	id RequestID
	ok bool
}

// Select focuses the session on a request.
func (s *Selection) Select(id RequestID) {
	s.id = id
	s.ok = true
}

// Selected returns the focused request ID, if any.
func (s *Selection) Selected() (RequestID, bool) {
	return s.id, s.ok
}

// Clear drops the focus, e.g. after a terminal transition.
func (s *Selection) Clear() {
	*s = Selection{}
}

package models

// statusAliases maps every raw status token the backing system emits to the
// canonical vocabulary. The backing system reads "pending"/"done" but writes
// are expected in its own tokens, so the two directions are not symmetric.
var statusAliases = map[string]TaskStatus{
	"pending":     StatusTodo,
	"todo":        StatusTodo,
	"in-progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"completed":   StatusCompleted,
	"done":        StatusCompleted,
	"blocked":     StatusBlocked,
	"deferred":    StatusDeferred,
	"cancelled":   StatusCancelled,
	"review":      StatusReview,
}

// NormalizeStatus maps a raw backing-system status onto the canonical enum.
// Unrecognized values map to StatusTodo; this never fails, because malformed
// data must not abort a whole read.
func NormalizeStatus(raw string) TaskStatus {
	if s, ok := statusAliases[raw]; ok {
		return s
	}
	return StatusTodo
}

// DenormalizeStatus maps a canonical status back onto the token the backing
// system expects on writes. This is the identity mapping except for
// "completed", which the backing system persists as "done". That asymmetry is
// historical and must be kept exact or round-tripped files stop matching what
// the backing tool writes itself.
func DenormalizeStatus(s TaskStatus) string {
	if s == StatusCompleted {
		return "done"
	}
	return string(s)
}

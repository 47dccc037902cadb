package dialogue

// ShouldEscalate reports whether a call with the given consecutive
// misunderstanding count must be handed to staff. Exactly threshold misses
// are tolerated: the comparison is strictly greater-than. Escalation also
// needs somewhere to send the caller, so it never fires without a
// configured staff line.
func ShouldEscalate(counter, threshold int, hasStaffLine bool) bool {
	return counter > threshold && hasStaffLine
}

package schedule

import (
	"strings"

	"github.com/eventpilot/eventpilot/internal/types"
)

// SelectSlot picks one slot from candidates using event-name keywords.
// Matching is first-match-wins on a case-insensitive substring of the
// event name; only one keyword category is tested per call:
//
//   - "date" events prefer evening slots starting 17:00 or later
//   - "lunch" events prefer slots starting between 12:00 and 15:00
//   - "dinner" events prefer slots starting 19:00 or later
//
// When the matched category has no candidates, or no keyword matches,
// the first candidate in input order wins. An empty candidate list
// returns types.ErrNoCandidateSlots.
func SelectSlot(eventName string, candidates []types.Slot) (types.Slot, error) {
	if len(candidates) == 0 {
		return types.Slot{}, types.ErrNoCandidateSlots
	}

	name := strings.ToLower(eventName)
	switch {
	case strings.Contains(name, "date"):
		if s, ok := firstMatching(candidates, func(h int) bool { return h >= 17 }); ok {
			return s, nil
		}
	case strings.Contains(name, "lunch"):
		if s, ok := firstMatching(candidates, func(h int) bool { return h >= 12 && h < 15 }); ok {
			return s, nil
		}
	case strings.Contains(name, "dinner"):
		if s, ok := firstMatching(candidates, func(h int) bool { return h >= 19 }); ok {
			return s, nil
		}
	}
	return candidates[0], nil
}

// firstMatching returns the earliest slot whose start hour satisfies the
// predicate. Candidates are already in the engine's deterministic order,
// so input order is the tie-breaker.
func firstMatching(candidates []types.Slot, match func(hour int) bool) (types.Slot, bool) {
	for _, s := range candidates {
		if match(s.StartHour()) {
			return s, true
		}
	}
	return types.Slot{}, false
}

package enrollment

import "math"

// computePercent derives a completion percentage from the completed lecture ids and the
// course's valid lecture id set. Only completions that map to a valid lecture count.
// A course with no lectures yields ok=false: the caller keeps the prior progress value.
func computePercent(completed, valid []string) (pct int, ok bool) {
	if len(valid) == 0 {
		return 0, false
	}

	validSet := make(map[string]struct{}, len(valid))
	for _, id := range valid {
		validSet[id] = struct{}{}
	}

	var n int
	for _, id := range completed {
		if _, found := validSet[id]; found {
			n++
		}
	}
	return int(math.Round(100 * float64(n) / float64(len(valid)))), true
}

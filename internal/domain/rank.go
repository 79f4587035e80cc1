package domain

import "sort"

// Partition splits an enriched set into the Earth-directed view (scores 1-3)
// and everything else (score 4 or unranked). Both partitions are freshly
// allocated; the input slice is not reordered.
//
// Earth-directed ordering: ascending score; within score 1, ascending
// predicted arrival with unknown arrivals last; all remaining ties newest
// CME first. The other partition keeps the newest-first order.
func Partition(enhanced []EnhancedCME) (earthDirected, other []EnhancedCME) {
	if len(enhanced) == 0 {
		return nil, nil
	}

	// Newest first before splitting, so every later tie-break and the other
	// partition inherit this order. Stable to preserve feed order on equal
	// start times.
	sorted := make([]EnhancedCME, len(enhanced))
	copy(sorted, enhanced)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})

	for _, cme := range sorted {
		if cme.ImpactScore.Ranked() {
			earthDirected = append(earthDirected, cme)
		} else {
			other = append(other, cme)
		}
	}

	sort.SliceStable(earthDirected, func(i, j int) bool {
		return lessEarthDirected(earthDirected[i], earthDirected[j])
	})

	return earthDirected, other
}

// lessEarthDirected orders the Earth-directed partition: score first, then
// predicted arrival for two score-1 entries. Equal keys fall through to the
// stable pre-sort (descending start time).
func lessEarthDirected(a, b EnhancedCME) bool {
	if a.ImpactScore != b.ImpactScore {
		return a.ImpactScore < b.ImpactScore
	}
	if a.ImpactScore != ScoreArrivalPredicted {
		return false
	}

	switch {
	case a.PredictedArrival == nil && b.PredictedArrival == nil:
		return false
	case a.PredictedArrival == nil:
		return false // unknown arrivals sort after known ones
	case b.PredictedArrival == nil:
		return true
	default:
		return a.PredictedArrival.Before(*b.PredictedArrival)
	}
}

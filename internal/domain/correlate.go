package domain

// CMEIndex is a read-only lookup from activityID to its enriched CME, built
// once per refresh cycle. Duplicate IDs within a window are a feed anomaly,
// not an error: the last occurrence wins.
type CMEIndex map[string]EnhancedCME

// BuildCMEIndex indexes an enriched set by activityID.
func BuildCMEIndex(enhanced []EnhancedCME) CMEIndex {
	index := make(CMEIndex, len(enhanced))
	for _, cme := range enhanced {
		index[cme.ActivityID] = cme
	}
	return index
}

// AnnotateFlares attaches a summary of every resolvable linked CME to each
// flare, in the flare's own linkedEvents order. Inputs are not mutated; the
// returned slice holds annotated copies. A linked ID outside the current
// fetch window resolves to nothing and is silently skipped.
func AnnotateFlares(flares []Flare, index CMEIndex) []Flare {
	if len(flares) == 0 {
		return nil
	}
	annotated := make([]Flare, len(flares))
	for i, flare := range flares {
		flare.AssociatedCMEs = nil
		for _, id := range flare.LinkedEventIDs {
			cme, ok := index[id]
			if !ok {
				continue
			}
			flare.AssociatedCMEs = append(flare.AssociatedCMEs, CMESummary{
				ActivityID:  cme.ActivityID,
				StartTime:   cme.StartTime,
				Note:        cme.Note,
				Link:        cme.Link,
				ImpactScore: cme.ImpactScore,
			})
		}
		annotated[i] = flare
	}
	return annotated
}

// AnnotateShocks attaches the causative CME to each shock: the first linked
// ID that resolves in the window. A shock carries at most one causative CME,
// so the scan stops at the first match.
func AnnotateShocks(shocks []Shock, index CMEIndex) []Shock {
	if len(shocks) == 0 {
		return nil
	}
	annotated := make([]Shock, len(shocks))
	for i, shock := range shocks {
		shock.CauseCME = nil
		for _, id := range shock.LinkedEventIDs {
			cme, ok := index[id]
			if !ok {
				continue
			}
			shock.CauseCME = &CMECause{
				ActivityID: cme.ActivityID,
				StartTime:  cme.StartTime,
				Speed:      cme.AnalysisSpeed,
				Link:       cme.Link,
			}
			break
		}
		annotated[i] = shock
	}
	return annotated
}

package domain

import "strings"

// earthGeospaceImpact is the display placeholder when an Earth-geomagnetic
// model run carries no explicit impact list.
const earthGeospaceImpact = "Earth Geospace"

// EnrichCME builds the enriched, scored view of a CME. It is a pure function
// of its input: sparse records degrade to ScoreNone with empty display
// fields, never an error, and re-running it on the same input yields an
// identical result.
func EnrichCME(cme CME) EnhancedCME {
	enhanced := EnhancedCME{CME: cme, ImpactScore: ScoreNone}

	analysis, ok := selectAnalysis(cme.Analyses)
	if !ok {
		// No analyses at all: never Earth-relevant, nothing to display.
		return enhanced
	}

	enhanced.PotentiallyEarthDirected = analysis.IsMostAccurate ||
		len(analysis.Simulations) > 0 ||
		mentionsEarth(analysis.Note)

	enhanced.AnalysisSpeed = analysis.Speed
	enhanced.AnalysisHalfAngle = analysis.HalfAngle
	enhanced.AnalysisType = analysis.Type
	enhanced.AnalysisNote = analysis.Note

	primary, hasPrimary := primaryEarthSimulation(analysis.Simulations)

	// Ordered decision list, first matching rule wins. The rules run from
	// most certain (an Earth-tagged model run with an arrival time) down to
	// a stray textual mention of Earth.
	switch {
	case hasPrimary && primary.ShockArrival != nil:
		enhanced.ImpactScore = ScoreArrivalPredicted
		enhanced.PredictedArrival = primary.ShockArrival
		enhanced.PredictedDuration = primary.Duration
		enhanced.ImpactLocations = impactLocations(primary)

	case hasPrimary:
		enhanced.ImpactScore = ScoreEarthDirected
		enhanced.PredictedDuration = primary.Duration
		enhanced.ImpactLocations = explicitImpactLocations(primary)

	case mentionsEarth(analysis.Note):
		sim, found := firstSimulationWithImpacts(analysis.Simulations)
		if !found {
			if len(analysis.Simulations) > 0 {
				enhanced.ImpactScore = ScoreModeled
			}
			break
		}
		enhanced.ImpactScore = ScoreEarthMention
		arrival := sim.Impacts[0].Arrival
		if !arrival.IsZero() {
			enhanced.PredictedArrival = &arrival
		}

	case len(analysis.Simulations) > 0:
		enhanced.ImpactScore = ScoreModeled
	}

	return enhanced
}

// EnrichCMEs enriches a whole fetch window, preserving input order.
func EnrichCMEs(cmes []CME) []EnhancedCME {
	if len(cmes) == 0 {
		return nil
	}
	enhanced := make([]EnhancedCME, len(cmes))
	for i, cme := range cmes {
		enhanced[i] = EnrichCME(cme)
	}
	return enhanced
}

// selectAnalysis picks the analysis all display fields come from: the first
// one flagged most accurate, else the first in feed order. The feed should
// flag at most one as most accurate; if it ever flags several, the first
// wins.
func selectAnalysis(analyses []CMEAnalysis) (CMEAnalysis, bool) {
	if len(analyses) == 0 {
		return CMEAnalysis{}, false
	}
	for _, a := range analyses {
		if a.IsMostAccurate {
			return a, true
		}
	}
	return analyses[0], true
}

// primaryEarthSimulation returns the first model run pointing at Earth:
// flagged Earth-geomagnetic or listing Earth among its impacts.
func primaryEarthSimulation(sims []EnlilSimulation) (EnlilSimulation, bool) {
	for _, sim := range sims {
		if isEarthDirected(sim) {
			return sim, true
		}
	}
	return EnlilSimulation{}, false
}

func isEarthDirected(sim EnlilSimulation) bool {
	if sim.IsEarthGB != nil && *sim.IsEarthGB {
		return true
	}
	for _, imp := range sim.Impacts {
		if imp.Location == "Earth" {
			return true
		}
	}
	return false
}

// firstSimulationWithImpacts returns the first model run, Earth-directed or
// not, that lists any planetary impacts.
func firstSimulationWithImpacts(sims []EnlilSimulation) (EnlilSimulation, bool) {
	for _, sim := range sims {
		if len(sim.Impacts) > 0 {
			return sim, true
		}
	}
	return EnlilSimulation{}, false
}

// impactLocations lists the run's impact locations, substituting the
// geospace placeholder when an Earth-geomagnetic run has no explicit list.
func impactLocations(sim EnlilSimulation) []string {
	if locs := explicitImpactLocations(sim); locs != nil {
		return locs
	}
	if sim.IsEarthGB != nil && *sim.IsEarthGB {
		return []string{earthGeospaceImpact}
	}
	return nil
}

func explicitImpactLocations(sim EnlilSimulation) []string {
	if len(sim.Impacts) == 0 {
		return nil
	}
	locs := make([]string, len(sim.Impacts))
	for i, imp := range sim.Impacts {
		locs[i] = imp.Location
	}
	return locs
}

func mentionsEarth(note string) bool {
	return strings.Contains(strings.ToLower(note), "earth")
}

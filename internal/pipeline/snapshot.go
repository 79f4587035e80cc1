package pipeline

import (
	"time"

	"github.com/TNRProtography/solar-dashboard/internal/domain"
)

// Window is the fetch time range for one refresh cycle.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Snapshot is the complete output of one refresh cycle: the ranked CME
// partitions plus the correlated flares and shocks. It is immutable once
// built; each cycle replaces the previous snapshot wholesale.
type Snapshot struct {
	EarthDirected []domain.EnhancedCME `json:"earth_directed"`
	Other         []domain.EnhancedCME `json:"other"`
	Flares        []domain.Flare       `json:"flares"`
	Shocks        []domain.Shock       `json:"shocks"`
	Window        Window               `json:"window"`
	RefreshedAt   time.Time            `json:"refreshed_at"`
}

// BuildSnapshot runs the enrichment, ranking, and correlation engine over
// one window's raw records. Pure: derived records are rebuilt from scratch,
// the inputs are never mutated.
func BuildSnapshot(cmes []domain.CME, flares []domain.Flare, shocks []domain.Shock, window Window, refreshedAt time.Time) Snapshot {
	enhanced := domain.EnrichCMEs(cmes)
	earthDirected, other := domain.Partition(enhanced)

	index := domain.BuildCMEIndex(enhanced)

	return Snapshot{
		EarthDirected: earthDirected,
		Other:         other,
		Flares:        domain.AnnotateFlares(flares, index),
		Shocks:        domain.AnnotateShocks(shocks, index),
		Window:        window,
		RefreshedAt:   refreshedAt,
	}
}

// alertable selects the Earth-directed CMEs worth publishing: those at or
// below (higher concern than) the configured score threshold.
func alertable(earthDirected []domain.EnhancedCME, maxScore domain.ImpactScore) []domain.EnhancedCME {
	var out []domain.EnhancedCME
	for _, cme := range earthDirected {
		if cme.ImpactScore <= maxScore {
			out = append(out, cme)
		}
	}
	return out
}

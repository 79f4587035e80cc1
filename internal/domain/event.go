package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ImpactScore is an ordinal priority bucket for how confident we are that a
// CME affects Earth. Lower values mean higher concern; the buckets are
// priorities, not probabilities.
type ImpactScore int

const (
	// ScoreArrivalPredicted: an Earth-directed ENLIL run carries an explicit
	// shock arrival time.
	ScoreArrivalPredicted ImpactScore = 1
	// ScoreEarthDirected: an Earth-directed ENLIL run exists but predicts no
	// arrival time.
	ScoreEarthDirected ImpactScore = 2
	// ScoreEarthMention: the analysis note mentions Earth and some model run
	// lists planetary impacts.
	ScoreEarthMention ImpactScore = 3
	// ScoreModeled: model runs exist but none point at Earth.
	ScoreModeled ImpactScore = 4
	// ScoreNone marks a CME with no Earth relevance at all. It sorts after
	// every ranked score.
	ScoreNone ImpactScore = math.MaxInt32
)

// Ranked reports whether the score falls in one of the Earth-relevant
// buckets shown in the primary partition (1-3).
func (s ImpactScore) Ranked() bool { return s <= ScoreEarthMention }

// MarshalJSON emits ScoreNone as null so consumers see "unranked" rather
// than the int sentinel.
func (s ImpactScore) MarshalJSON() ([]byte, error) {
	if s == ScoreNone {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalJSON accepts null as ScoreNone, round-tripping MarshalJSON.
func (s *ImpactScore) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ScoreNone
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("parse impact score: %w", err)
	}
	*s = ImpactScore(n)
	return nil
}

// CME is a coronal mass ejection record from the feed, after parsing.
// Analyses preserve feed order, which is not guaranteed chronological.
type CME struct {
	ActivityID     string        `json:"activity_id"`
	StartTime      time.Time     `json:"start_time"`
	SourceLocation string        `json:"source_location,omitempty"`
	Note           string        `json:"note,omitempty"`
	Link           string        `json:"link,omitempty"`
	Analyses       []CMEAnalysis `json:"analyses,omitempty"`

	// LinkedEventIDs reference related flares and shocks by activityID.
	// The relationship is symmetric by convention only; the feed does not
	// guarantee both sides agree.
	LinkedEventIDs []string `json:"linked_event_ids,omitempty"`
}

// CMEAnalysis is one measurement pass over a CME. At most one analysis per
// CME should be flagged most accurate, but the feed does not guarantee it.
type CMEAnalysis struct {
	Speed          float64           `json:"speed"` // km/s
	HalfAngle      float64           `json:"half_angle"`
	Type           string            `json:"type,omitempty"`
	Note           string            `json:"note,omitempty"`
	IsMostAccurate bool              `json:"is_most_accurate"`
	Simulations    []EnlilSimulation `json:"simulations,omitempty"`
}

// EnlilSimulation is one heliospheric propagation model run attached to an
// analysis. Nullable feed fields stay pointers so absence is distinguishable
// from zero.
type EnlilSimulation struct {
	ShockArrival *time.Time    `json:"shock_arrival,omitempty"`
	Duration     *float64      `json:"duration,omitempty"` // hours
	IsEarthGB    *bool         `json:"is_earth_gb,omitempty"`
	Impacts      []EnlilImpact `json:"impacts,omitempty"`
}

// EnlilImpact is a predicted arrival at a planet or spacecraft.
type EnlilImpact struct {
	Location       string    `json:"location"`
	Arrival        time.Time `json:"arrival,omitzero"`
	IsGlancingBlow bool      `json:"is_glancing_blow"`
}

// EnhancedCME is the enriched, ranked view of a CME. It is built in one shot
// by EnrichCME and never mutated afterwards; every display field comes from
// the selected analysis and its primary Earth simulation.
type EnhancedCME struct {
	CME

	ImpactScore              ImpactScore `json:"impact_score,omitempty"`
	PotentiallyEarthDirected bool        `json:"potentially_earth_directed"`

	AnalysisSpeed     float64 `json:"analysis_speed,omitempty"`
	AnalysisHalfAngle float64 `json:"analysis_half_angle,omitempty"`
	AnalysisType      string  `json:"analysis_type,omitempty"`
	AnalysisNote      string  `json:"analysis_note,omitempty"`

	PredictedArrival  *time.Time `json:"predicted_arrival,omitempty"`
	PredictedDuration *float64   `json:"predicted_duration,omitempty"`
	ImpactLocations   []string   `json:"impact_locations,omitempty"`
}

// CMESummary is the read-only projection of an EnhancedCME attached to a
// flare during correlation. The EnhancedCME itself stays owned by the
// enrichment output set.
type CMESummary struct {
	ActivityID  string      `json:"activity_id"`
	StartTime   time.Time   `json:"start_time"`
	Note        string      `json:"note,omitempty"`
	Link        string      `json:"link,omitempty"`
	ImpactScore ImpactScore `json:"impact_score,omitempty"`
}

// CMECause is the single causative-CME projection attached to a shock.
type CMECause struct {
	ActivityID string    `json:"activity_id"`
	StartTime  time.Time `json:"start_time"`
	Speed      float64   `json:"speed,omitempty"`
	Link       string    `json:"link,omitempty"`
}

// Flare is a solar flare record. AssociatedCMEs is populated by the
// correlator; a flare may link to several CMEs.
type Flare struct {
	ActivityID     string     `json:"activity_id"`
	BeginTime      time.Time  `json:"begin_time"`
	PeakTime       *time.Time `json:"peak_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	ClassType      string     `json:"class_type,omitempty"`
	SourceLocation string     `json:"source_location,omitempty"`
	Note           string     `json:"note,omitempty"`
	Link           string     `json:"link,omitempty"`
	LinkedEventIDs []string   `json:"linked_event_ids,omitempty"`

	AssociatedCMEs []CMESummary `json:"associated_cmes,omitempty"`
}

// Shock is an interplanetary shock record. CauseCME is populated by the
// correlator from the first linked CME found in the current window; unlike
// flares, a shock carries at most one causative CME.
type Shock struct {
	ActivityID     string    `json:"activity_id"`
	EventTime      time.Time `json:"event_time"`
	Location       string    `json:"location,omitempty"`
	Link           string    `json:"link,omitempty"`
	LinkedEventIDs []string  `json:"linked_event_ids,omitempty"`

	CauseCME *CMECause `json:"cause_cme,omitempty"`
}

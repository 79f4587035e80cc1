package domain

import (
	"strings"
	"time"
)

// RawCME mirrors the DONKI CME JSON structure. Field names follow the wire
// format; nullable arrays and values stay pointers/nil slices.
type RawCME struct {
	ActivityID     string           `json:"activityID"`
	StartTime      string           `json:"startTime"`
	SourceLocation string           `json:"sourceLocation"`
	Note           string           `json:"note"`
	Link           string           `json:"link"`
	CMEAnalyses    []RawCMEAnalysis `json:"cmeAnalyses"`
	LinkedEvents   []RawLinkedEvent `json:"linkedEvents"`
}

// RawCMEAnalysis is one entry of a CME's cmeAnalyses array.
type RawCMEAnalysis struct {
	Speed          float64    `json:"speed"`
	HalfAngle      float64    `json:"halfAngle"`
	Type           string     `json:"type"`
	Note           string     `json:"note"`
	IsMostAccurate bool       `json:"isMostAccurate"`
	EnlilList      []RawEnlil `json:"enlilList"`
}

// RawEnlil is one WSA-ENLIL model run. isEarthGB is the wire name for the
// Earth geomagnetic-storm flag.
type RawEnlil struct {
	EstimatedShockArrivalTime *string     `json:"estimatedShockArrivalTime"`
	EstimatedDuration         *float64    `json:"estimatedDuration"`
	IsEarthGB                 *bool       `json:"isEarthGB"`
	ImpactList                []RawImpact `json:"impactList"`
}

// RawImpact is a predicted arrival at a planet or spacecraft.
type RawImpact struct {
	Location       string `json:"location"`
	ArrivalTime    string `json:"arrivalTime"`
	IsGlancingBlow bool   `json:"isGlancingBlow"`
}

// RawLinkedEvent is a foreign activityID reference.
type RawLinkedEvent struct {
	ActivityID string `json:"activityID"`
}

// RawFlare mirrors the DONKI FLR JSON structure.
type RawFlare struct {
	FlrID          string           `json:"flrID"`
	BeginTime      string           `json:"beginTime"`
	PeakTime       string           `json:"peakTime"`
	EndTime        string           `json:"endTime"`
	ClassType      string           `json:"classType"`
	SourceLocation string           `json:"sourceLocation"`
	Note           string           `json:"note"`
	Link           string           `json:"link"`
	LinkedEvents   []RawLinkedEvent `json:"linkedEvents"`
}

// RawShock mirrors the DONKI IPS JSON structure.
type RawShock struct {
	ActivityID   string           `json:"activityID"`
	EventTime    string           `json:"eventTime"`
	Location     string           `json:"location"`
	Link         string           `json:"link"`
	LinkedEvents []RawLinkedEvent `json:"linkedEvents"`
}

// donkiTimeLayouts covers the feed's minute-precision timestamps plus full
// RFC 3339 for records that carry seconds.
var donkiTimeLayouts = []string{
	"2006-01-02T15:04Z",
	time.RFC3339,
}

// parseTimeOrZero parses a DONKI timestamp, returning the zero time on any
// failure. Sparse or malformed fields degrade, they never error.
func parseTimeOrZero(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range donkiTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseTimeOrNil is parseTimeOrZero for nullable timestamps.
func parseTimeOrNil(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseTimeOrZero(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// linkedIDs flattens linkedEvents into a plain ID slice, preserving feed
// order and dropping empty entries.
func linkedIDs(events []RawLinkedEvent) []string {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if e.ActivityID != "" {
			ids = append(ids, e.ActivityID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// ParseCME converts a raw feed record into the typed domain model.
func ParseCME(raw RawCME) CME {
	cme := CME{
		ActivityID:     raw.ActivityID,
		StartTime:      parseTimeOrZero(raw.StartTime),
		SourceLocation: raw.SourceLocation,
		Note:           raw.Note,
		Link:           raw.Link,
		LinkedEventIDs: linkedIDs(raw.LinkedEvents),
	}

	for _, a := range raw.CMEAnalyses {
		analysis := CMEAnalysis{
			Speed:          a.Speed,
			HalfAngle:      a.HalfAngle,
			Type:           a.Type,
			Note:           a.Note,
			IsMostAccurate: a.IsMostAccurate,
		}
		for _, sim := range a.EnlilList {
			analysis.Simulations = append(analysis.Simulations, EnlilSimulation{
				ShockArrival: parseTimeOrNil(sim.EstimatedShockArrivalTime),
				Duration:     sim.EstimatedDuration,
				IsEarthGB:    sim.IsEarthGB,
				Impacts:      parseImpacts(sim.ImpactList),
			})
		}
		cme.Analyses = append(cme.Analyses, analysis)
	}

	return cme
}

func parseImpacts(raw []RawImpact) []EnlilImpact {
	if len(raw) == 0 {
		return nil
	}
	impacts := make([]EnlilImpact, len(raw))
	for i, imp := range raw {
		impacts[i] = EnlilImpact{
			Location:       imp.Location,
			Arrival:        parseTimeOrZero(imp.ArrivalTime),
			IsGlancingBlow: imp.IsGlancingBlow,
		}
	}
	return impacts
}

// ParseFlare converts a raw FLR record into the typed domain model.
func ParseFlare(raw RawFlare) Flare {
	peak := raw.PeakTime
	end := raw.EndTime
	return Flare{
		ActivityID:     raw.FlrID,
		BeginTime:      parseTimeOrZero(raw.BeginTime),
		PeakTime:       parseTimeOrNil(&peak),
		EndTime:        parseTimeOrNil(&end),
		ClassType:      raw.ClassType,
		SourceLocation: raw.SourceLocation,
		Note:           raw.Note,
		Link:           raw.Link,
		LinkedEventIDs: linkedIDs(raw.LinkedEvents),
	}
}

// ParseShock converts a raw IPS record into the typed domain model.
func ParseShock(raw RawShock) Shock {
	return Shock{
		ActivityID:     raw.ActivityID,
		EventTime:      parseTimeOrZero(raw.EventTime),
		Location:       raw.Location,
		Link:           raw.Link,
		LinkedEventIDs: linkedIDs(raw.LinkedEvents),
	}
}

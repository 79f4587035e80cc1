// Package domain models NASA DONKI space-weather events and implements the
// enrichment, correlation, and ranking engine over them.
//
// # Data Source
//
// Events come from the DONKI (Database Of Notifications, Knowledge,
// Information) API at https://api.nasa.gov/DONKI/. Three feeds are consumed
// per fetch window: CME (coronal mass ejections), FLR (solar flares), and
// IPS (interplanetary shocks). Records arrive as JSON already shaped by the
// upstream service; this package only checks field presence, never schema.
//
// # DONKI Conventions
//
// Timestamps:
//
//	Minute precision with a bare Z suffix: "2024-03-01T12:00Z".
//	Some records carry seconds (full RFC 3339). Both are accepted;
//	anything else degrades to the zero time.
//
// Identity:
//
//	Every record has an activityID, e.g. "2024-03-01T12:00:00-CME-001".
//	IDs are unique within a fetch window but not checked globally.
//	CMEs, flares, and shocks cross-reference each other through
//	linkedEvents lists of activityIDs. The linkage is symmetric by
//	convention only; dangling references (events outside the window) are
//	expected and skipped.
//
// Analyses and model runs:
//
//	A CME carries zero or more cmeAnalyses in feed order. At most one
//	should be flagged isMostAccurate, though the feed does not enforce
//	it; the first flagged analysis wins, else the first in feed order.
//	Each analysis may carry WSA-ENLIL model runs (enlilList) predicting
//	arrival at planets and spacecraft. isEarthGB marks a run expected to
//	disturb Earth's geomagnetic field.
//
// # Earth Impact Score
//
// EnrichCME assigns each CME an ordinal priority from an ordered decision
// list, most certain rule first:
//
//	1  Earth-directed model run with an explicit shock arrival time
//	2  Earth-directed model run, no arrival time
//	3  analysis note mentions Earth and some run lists impacts
//	4  model runs exist but none point at Earth
//	∞  (ScoreNone) nothing ties the CME to Earth
//
// Scores are buckets, not probabilities, and are never combined. A CME with
// no analyses always scores ScoreNone with empty display fields.
//
// # Purity
//
// EnrichCME, AnnotateFlares, AnnotateShocks, and Partition are pure and
// total: no I/O, no mutation of their inputs, no error returns. Sparse or
// malformed optional fields degrade to absent values. Each refresh cycle
// rebuilds every derived record from scratch; nothing is carried between
// cycles.
package domain

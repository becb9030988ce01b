// Package domain models earthquake early-warning alert messages and the
// derived summary products built from them.
//
// # Wire Dialects
//
// Alerts arrive in one of two dialects, auto-detected from the first
// non-whitespace byte when not declared:
//
//	JSON: an ARC-style event envelope holding a
//	"shakealert_event_messages" list. Messages are sorted by version; the
//	final message is canonical for magnitude, depth, epicenter, and origin
//	time. The envelope may embed a catalog "preferred_origin", surfaced to
//	the reconciler as an override candidate.
//
//	XML: a ShakeAlert "event_message" document. Origin
//	parameters live under core_info (id attribute, mag, mag_uncer, lat,
//	lon, depth, orig_time); predicted ground-motion contours under
//	gm_info/gmcontour_pred.
//
// Both dialects normalize to the same EventRecord: depth in kilometers,
// times in UTC. Required fields are never defaulted; a message missing
// depth or magnitude fails with a malformed-message error rather than
// producing a record with a silent zero.
//
// # Origin Reconciliation
//
// The real-time alert is fast but approximate; the catalog origin, when one
// exists, is authoritative. Reconcile replaces epicenter, depth, magnitude,
// and origin time wholesale from the override and marks the record
// authoritative, preserving the original dialect tag for audit. An override
// naming a different event id is rejected.
//
// # City Proximity
//
// Cities come from a hand-maintained roster (name,lat,lon,population,tier
// CSV; tier A outranks tier B). Ranking is great-circle distance from the
// epicenter, cut off at a magnitude-scaled radius, ties broken by tier then
// name. Each city gets an estimated intensity from the attenuation model, an
// 8-point compass direction toward the epicenter, and a warning-time
// estimate from S-wave slant-distance travel time (near-source velocity
// ~3.55 km/s, Hadley/Kanamori) minus alert latency.
//
// # Intensity Contours
//
// Contour rings are MMI-level polygons. When the message carries a
// ground-motion contour section those rings are used (validated,
// deduplicated, rewound counter-clockwise); otherwise octagons are
// synthesized around the epicenter with radii from the inverted attenuation
// model, strictly nested. The minimum emitted level depends on magnitude:
// small events show the felt contour, large events start at the alerting
// level. Colors follow the standard MMI palette:
//
//	2 #c8d0fd | 3 #b3f3fe | 4 #b0fff7 | 5 #afff93 | 6 #fefb3c
//	7 #f0c52f | 8 #e58620 | 9 #da0201 | 10 #ab0101
//
// # Error Taxonomy
//
// Every failure carries exactly one Kind (malformed message, invalid
// coordinate, incompatible override, insufficient roster, degenerate
// contour). All kinds are terminal for the current run; nothing retries and
// nothing downgrades to a default value.
package domain

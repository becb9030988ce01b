package domain

import (
	"time"

	"github.com/quakewatch/alert-summary/internal/geomath"
)

// Format identifies the wire dialect an alert message arrived in.
type Format int

const (
	// FormatAuto asks the parser to sniff the dialect from the payload.
	FormatAuto Format = iota
	// FormatJSON is the ARC-style event JSON dialect.
	FormatJSON
	// FormatXML is the ShakeAlert event_message XML dialect.
	FormatXML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatXML:
		return "xml"
	default:
		return "auto"
	}
}

// EventRecord is the canonical representation of one seismic event,
// normalized from either wire dialect. Depth is kilometers, times are UTC.
type EventRecord struct {
	ID         string    `json:"id"`
	OriginTime time.Time `json:"origin_time"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	DepthKm    float64   `json:"depth_km"`
	Magnitude  float64   `json:"magnitude"`

	// MagnitudeUncertainty is nil when the message did not report one;
	// unknown is represented as absent, never zero.
	MagnitudeUncertainty *float64 `json:"magnitude_uncertainty,omitempty"`

	// NumStations is the station count the alert was based on, when reported.
	NumStations *int `json:"num_stations,omitempty"`

	// AlertTime is when the alert message was issued, when reported. Used to
	// estimate per-city warning time; zero when the dialect omits it.
	AlertTime time.Time `json:"alert_time,omitzero"`

	// Format records the dialect the alert arrived in, preserved across
	// reconciliation for audit.
	Format Format `json:"format"`

	// Authoritative is true only after an origin override replaced the
	// alert-derived epicenter, depth, and magnitude.
	Authoritative bool `json:"authoritative"`

	RawPayload []byte `json:"-"`
}

// Epicenter returns the event location as a geomath point.
func (e EventRecord) Epicenter() geomath.Point {
	return geomath.Point{Lat: e.Lat, Lon: e.Lon}
}

// OriginOverride is a catalog-sourced preferred origin trusted above the
// real-time alert.
type OriginOverride struct {
	EventID    string    `json:"event_id"`
	OriginTime time.Time `json:"origin_time"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	DepthKm    float64   `json:"depth_km"`
	Magnitude  float64   `json:"magnitude"`
}

// Tier classifies roster entries by population; tier A cities outrank tier B
// when breaking distance ties.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
)

// CityEntry is one population center from the reference roster. Immutable,
// loaded once per run.
type CityEntry struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Population int     `json:"population"`
	Tier       Tier    `json:"tier"`
}

// AffectedCity is a roster entry ranked by proximity to the epicenter.
type AffectedCity struct {
	CityEntry

	DistanceKm float64 `json:"distance_km"`

	// Intensity is the estimated MMI at the city from the attenuation model.
	Intensity int `json:"intensity"`

	// CompassDirection points from the city toward the epicenter.
	CompassDirection string `json:"compass_direction"`

	// WarningSeconds is the S-wave travel time to the city minus the alert
	// latency, floored at zero.
	WarningSeconds float64 `json:"warning_seconds"`
}

// IntensityContour is one closed polygon approximating the area shaken at a
// given MMI level. The ring is implicitly closed (last vertex connects back
// to the first) and wound counter-clockwise.
type IntensityContour struct {
	Level int             `json:"level"`
	Ring  []geomath.Point `json:"ring"`
	Color string          `json:"color"`
}

// LocationError describes how far the raw alert epicenter was from the
// authoritative one, present only when an override was applied.
type LocationError struct {
	DistanceKm       float64 `json:"distance_km"`
	CompassDirection string  `json:"compass_direction"`
}

// ReportModel is the immutable aggregate handed to renderers: one reconciled
// event, the ranked affected cities, and the intensity contours ordered by
// descending level.
type ReportModel struct {
	Event    EventRecord        `json:"event"`
	Cities   []AffectedCity     `json:"cities"`
	Contours []IntensityContour `json:"contours"`

	LocationError *LocationError `json:"location_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewReportModel assembles the final aggregate. Pure aggregation: it cannot
// fail on its own, only propagate what upstream stages produced.
func NewReportModel(event EventRecord, cities []AffectedCity, contours []IntensityContour, locErr *LocationError) ReportModel {
	return ReportModel{
		Event:         event,
		Cities:        cities,
		Contours:      contours,
		LocationError: locErr,
		CreatedAt:     clock.Now().UTC(),
	}
}

// validateEventRecord enforces the canonical-model invariants shared by both
// dialect decoders.
func validateEventRecord(e EventRecord) error {
	if err := e.Epicenter().Validate(); err != nil {
		return Errorf(KindInvalidCoordinate, "event %q: %w", e.ID, err)
	}
	if e.DepthKm < 0 {
		return Errorf(KindMalformedMessage, "event %q: negative depth %g km", e.ID, e.DepthKm)
	}
	if e.Magnitude < 0 {
		return Errorf(KindMalformedMessage, "event %q: negative magnitude %g", e.ID, e.Magnitude)
	}
	if e.OriginTime.IsZero() {
		return Errorf(KindMalformedMessage, "event %q: missing origin time", e.ID)
	}
	return nil
}

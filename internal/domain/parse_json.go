package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/quakewatch/alert-summary/internal/geomath"
)

// flexFloat decodes a JSON number that upstream feeds sometimes quote as a
// string. A pointer field left nil means the value was absent.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return Errorf(KindMalformedMessage, "empty numeric value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Errorf(KindMalformedMessage, "numeric value %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// flexInt is flexFloat's integer counterpart, used for message versions and
// station counts.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return Errorf(KindMalformedMessage, "empty integer value")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Errorf(KindMalformedMessage, "integer value %q: %w", s, err)
	}
	*f = flexInt(v)
	return nil
}

// jsonEnvelope is the ARC-style event JSON dialect: an event wrapper holding
// the sequence of alert messages plus an optional catalog preferred origin.
type jsonEnvelope struct {
	EventID         string               `json:"event_id"`
	Messages        []jsonAlertMessage   `json:"shakealert_event_messages"`
	PreferredOrigin *jsonPreferredOrigin `json:"preferred_origin"`
}

type jsonAlertMessage struct {
	Version     *flexInt      `json:"version"`
	MessageID   string        `json:"message_id"`
	Mag         *flexFloat    `json:"mag"`
	MagUncer    *flexFloat    `json:"mag_uncer"`
	Depth       *flexFloat    `json:"depth"`
	Lat         *flexFloat    `json:"lat"`
	Lon         *flexFloat    `json:"lon"`
	NumStations *flexInt      `json:"num_stations"`
	OriginTime  string        `json:"origin_time"`
	Timestamp   string        `json:"timestamp"`
	Contours    []jsonContour `json:"ground_motion_contours"`
}

type jsonContour struct {
	MMI     json.RawMessage `json:"mmi"`
	PGA     *flexFloat      `json:"pga"`
	PGV     *flexFloat      `json:"pgv"`
	Polygon string          `json:"polygon"`
}

type jsonPreferredOrigin struct {
	Lat        *flexFloat `json:"latitude"`
	Lon        *flexFloat `json:"longitude"`
	Depth      *flexFloat `json:"depth"`
	Magnitude  *flexFloat `json:"magnitude"`
	EventTime  string     `json:"event_time"`
	UpdateTime string     `json:"update_time"`
}

// parseJSONAlert decodes an ARC-style event JSON message. The final
// (highest-version)
// alert message is canonical; the first message supplies the alert issue
// time. An embedded preferred origin is surfaced as an override for the
// reconciler but never merged here.
func parseJSONAlert(data []byte) (EventRecord, *OriginOverride, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return EventRecord{}, nil, Errorf(KindMalformedMessage, "decode json alert: %w", err)
	}
	if len(env.Messages) == 0 {
		return EventRecord{}, nil, Errorf(KindMalformedMessage, "json alert has no event messages")
	}

	// Sort by version so list ordering in the feed never matters.
	msgs := make([]jsonAlertMessage, len(env.Messages))
	copy(msgs, env.Messages)
	sort.SliceStable(msgs, func(i, j int) bool {
		return versionOf(msgs[i]) < versionOf(msgs[j])
	})
	final := msgs[len(msgs)-1]
	initial := msgs[0]

	if final.Mag == nil {
		return EventRecord{}, nil, Errorf(KindMalformedMessage, "json alert missing magnitude")
	}
	if final.Depth == nil {
		return EventRecord{}, nil, Errorf(KindMalformedMessage, "json alert missing depth")
	}
	if final.Lat == nil || final.Lon == nil {
		return EventRecord{}, nil, Errorf(KindMalformedMessage, "json alert missing epicenter")
	}

	originTime, err := parseUTCTime(final.OriginTime)
	if err != nil {
		return EventRecord{}, nil, Errorf(KindMalformedMessage, "json alert origin time: %w", err)
	}

	id := env.EventID
	if id == "" {
		// No catalog ID in the envelope; fall back to the alert message ID.
		if final.MessageID == "" {
			return EventRecord{}, nil, Errorf(KindMalformedMessage, "json alert missing event_id and message_id")
		}
		id = "ew " + final.MessageID
	}

	event := EventRecord{
		ID:         id,
		OriginTime: originTime,
		Lat:        float64(*final.Lat),
		Lon:        float64(*final.Lon),
		DepthKm:    float64(*final.Depth),
		Magnitude:  float64(*final.Mag),
		Format:     FormatJSON,
		RawPayload: data,
	}
	if final.MagUncer != nil {
		u := float64(*final.MagUncer)
		event.MagnitudeUncertainty = &u
	}
	if final.NumStations != nil {
		n := int(*final.NumStations)
		event.NumStations = &n
	}
	// The issue timestamp is optional, but a present one must parse: a
	// silently dropped timestamp would inflate every warning-time estimate.
	if initial.Timestamp != "" {
		t, terr := parseUTCTime(initial.Timestamp)
		if terr != nil {
			return EventRecord{}, nil, Errorf(KindMalformedMessage, "json alert timestamp: %w", terr)
		}
		event.AlertTime = t
	}

	if err := validateEventRecord(event); err != nil {
		return EventRecord{}, nil, err
	}

	override, err := parsePreferredOrigin(env.PreferredOrigin, id)
	if err != nil {
		return EventRecord{}, nil, err
	}
	return event, override, nil
}

func versionOf(m jsonAlertMessage) int {
	if m.Version == nil {
		return 0
	}
	return int(*m.Version)
}

// parsePreferredOrigin converts an embedded catalog origin into an override.
// A nil input is not an error; a present-but-incomplete one is.
func parsePreferredOrigin(po *jsonPreferredOrigin, eventID string) (*OriginOverride, error) {
	if po == nil {
		return nil, nil
	}
	if po.Lat == nil || po.Lon == nil || po.Depth == nil || po.Magnitude == nil {
		return nil, Errorf(KindMalformedMessage, "preferred origin missing required fields")
	}
	originTime, err := parseUTCTime(po.EventTime)
	if err != nil {
		return nil, Errorf(KindMalformedMessage, "preferred origin event time: %w", err)
	}
	return &OriginOverride{
		EventID:    eventID,
		OriginTime: originTime,
		Lat:        float64(*po.Lat),
		Lon:        float64(*po.Lon),
		DepthKm:    float64(*po.Depth),
		Magnitude:  float64(*po.Magnitude),
	}, nil
}

// ParseOverride decodes a standalone catalog origin record (JSON object with
// event_id, latitude, longitude, depth, magnitude, event_time).
func ParseOverride(data []byte) (*OriginOverride, error) {
	var rec struct {
		EventID string `json:"event_id"`
		jsonPreferredOrigin
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, Errorf(KindMalformedMessage, "decode override: %w", err)
	}
	if rec.EventID == "" {
		return nil, Errorf(KindMalformedMessage, "override missing event_id")
	}
	return parsePreferredOrigin(&rec.jsonPreferredOrigin, rec.EventID)
}

// parseJSONGroundMotion pulls the final message's contour set out of an
// ARC-style event JSON payload.
func parseJSONGroundMotion(data []byte) (GroundMotionInput, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, Errorf(KindMalformedMessage, "decode json alert: %w", err)
	}
	if len(env.Messages) == 0 {
		return SyntheticContours{}, nil
	}

	msgs := make([]jsonAlertMessage, len(env.Messages))
	copy(msgs, env.Messages)
	sort.SliceStable(msgs, func(i, j int) bool {
		return versionOf(msgs[i]) < versionOf(msgs[j])
	})
	final := msgs[len(msgs)-1]
	if len(final.Contours) == 0 {
		return SyntheticContours{}, nil
	}

	levels := make(map[int][]geomath.Point, len(final.Contours))
	for _, c := range final.Contours {
		lvl, err := truncateLevel(strings.Trim(string(c.MMI), `"`))
		if err != nil {
			return nil, err
		}
		ring, err := parseVertexString(c.Polygon)
		if err != nil {
			return nil, Errorf(KindMalformedMessage, "contour mmi %d: %w", lvl, err)
		}
		levels[lvl] = ring
	}
	return SuppliedContours{Levels: levels}, nil
}

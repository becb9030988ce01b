package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/quakewatch/alert-summary/internal/geomath"
)

// DetectFormat sniffs the wire dialect from the first non-whitespace byte:
// brace-delimited payloads are the JSON dialect, angle-bracket-delimited
// payloads are the XML dialect. Anything else is a malformed message: stray
// leading bytes must surface as an error, never as a silent guess.
func DetectFormat(data []byte) (Format, error) {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return FormatJSON, nil
		case '<':
			return FormatXML, nil
		default:
			return FormatAuto, Errorf(KindMalformedMessage, "unrecognized leading byte %q", b)
		}
	}
	return FormatAuto, Errorf(KindMalformedMessage, "empty message")
}

// Parse decodes an alert message into the canonical EventRecord. With
// FormatAuto the dialect is sniffed via DetectFormat. The second return value
// is the catalog origin embedded in the message, when the dialect carries one
// (JSON dialect only); callers still decide whether to apply it.
//
// Required fields that are absent or fail coercion produce a
// KindMalformedMessage error; the parser never substitutes defaults.
func Parse(data []byte, format Format) (EventRecord, *OriginOverride, error) {
	resolved := format
	if resolved == FormatAuto {
		var err error
		resolved, err = DetectFormat(data)
		if err != nil {
			return EventRecord{}, nil, err
		}
	}

	switch resolved {
	case FormatJSON:
		return parseJSONAlert(data)
	case FormatXML:
		event, err := parseXMLAlert(data)
		return event, nil, err
	default:
		return EventRecord{}, nil, Errorf(KindMalformedMessage, "unsupported format %v", format)
	}
}

// ParseGroundMotion extracts the per-level ground-motion contour rings from
// an alert message. A message without a ground-motion section yields
// SyntheticContours (the builder will synthesize rings); a section that is
// present but unparseable is a malformed message.
func ParseGroundMotion(data []byte, format Format) (GroundMotionInput, error) {
	resolved := format
	if resolved == FormatAuto {
		var err error
		resolved, err = DetectFormat(data)
		if err != nil {
			return nil, err
		}
	}

	switch resolved {
	case FormatJSON:
		return parseJSONGroundMotion(data)
	case FormatXML:
		return parseXMLGroundMotion(data)
	default:
		return nil, Errorf(KindMalformedMessage, "unsupported format %v", format)
	}
}

// alertTimeLayouts covers the timestamp shapes seen across both dialects and
// catalog feeds. All are interpreted as UTC.
var alertTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 (UTC)",
}

// parseUTCTime parses a message timestamp, normalizing to UTC.
func parseUTCTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Errorf(KindMalformedMessage, "empty timestamp")
	}
	for _, layout := range alertTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Errorf(KindMalformedMessage, "unparseable timestamp %q", s)
}

// parseVertexString parses a contour polygon encoded as whitespace-separated
// "lat,lon" pairs into a vertex list.
func parseVertexString(s string) ([]geomath.Point, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil, Errorf(KindMalformedMessage, "empty polygon string")
	}

	ring := make([]geomath.Point, 0, len(tokens))
	for _, tok := range tokens {
		lat, lon, ok := strings.Cut(tok, ",")
		if !ok {
			return nil, Errorf(KindMalformedMessage, "polygon vertex %q is not a lat,lon pair", tok)
		}
		latV, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return nil, Errorf(KindMalformedMessage, "polygon vertex latitude %q: %w", lat, err)
		}
		lonV, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return nil, Errorf(KindMalformedMessage, "polygon vertex longitude %q: %w", lon, err)
		}
		ring = append(ring, geomath.Point{Lat: latV, Lon: lonV})
	}
	return ring, nil
}

// truncateLevel converts a fractional MMI value ("6.0", 5.5) to its integer
// level by truncating toward zero, matching upstream contour labels.
func truncateLevel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Errorf(KindMalformedMessage, "empty mmi value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, Errorf(KindMalformedMessage, "unparseable mmi value %q", s)
	}
	return int(f), nil
}

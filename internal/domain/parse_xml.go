package domain

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/quakewatch/alert-summary/internal/geomath"
)

// xmlEventMessage is the ShakeAlert event_message XML dialect: core origin
// parameters under core_info, predicted ground-motion contours under gm_info.
type xmlEventMessage struct {
	XMLName   xml.Name     `xml:"event_message"`
	Timestamp string       `xml:"timestamp,attr"`
	CoreInfo  *xmlCoreInfo `xml:"core_info"`
	GMInfo    *xmlGMInfo   `xml:"gm_info"`
}

type xmlCoreInfo struct {
	ID          string  `xml:"id,attr"`
	Mag         *string `xml:"mag"`
	MagUncer    *string `xml:"mag_uncer"`
	Lat         *string `xml:"lat"`
	Lon         *string `xml:"lon"`
	Depth       *string `xml:"depth"`
	OrigTime    *string `xml:"orig_time"`
	NumStations *string `xml:"num_stations"`
}

type xmlGMInfo struct {
	Contours []xmlContour `xml:"gmcontour_pred>contour"`
}

type xmlContour struct {
	MMI     string `xml:"MMI"`
	PGA     string `xml:"PGA"`
	PGV     string `xml:"PGV"`
	Polygon string `xml:"polygon"`
}

// parseXMLAlert decodes a ShakeAlert event_message document into the
// canonical EventRecord. This dialect never embeds a catalog origin;
// overrides arrive separately.
func parseXMLAlert(data []byte) (EventRecord, error) {
	var msg xmlEventMessage
	if err := xml.Unmarshal(data, &msg); err != nil {
		return EventRecord{}, Errorf(KindMalformedMessage, "decode xml alert: %w", err)
	}
	if msg.CoreInfo == nil {
		return EventRecord{}, Errorf(KindMalformedMessage, "xml alert missing core_info")
	}
	core := msg.CoreInfo

	if core.ID == "" {
		return EventRecord{}, Errorf(KindMalformedMessage, "xml alert missing event id")
	}
	mag, err := requiredXMLFloat(core.Mag, "mag")
	if err != nil {
		return EventRecord{}, err
	}
	lat, err := requiredXMLFloat(core.Lat, "lat")
	if err != nil {
		return EventRecord{}, err
	}
	lon, err := requiredXMLFloat(core.Lon, "lon")
	if err != nil {
		return EventRecord{}, err
	}
	depth, err := requiredXMLFloat(core.Depth, "depth")
	if err != nil {
		return EventRecord{}, err
	}
	if core.OrigTime == nil {
		return EventRecord{}, Errorf(KindMalformedMessage, "xml alert missing orig_time")
	}
	originTime, err := parseUTCTime(*core.OrigTime)
	if err != nil {
		return EventRecord{}, Errorf(KindMalformedMessage, "xml alert orig_time: %w", err)
	}

	event := EventRecord{
		ID:         core.ID,
		OriginTime: originTime,
		Lat:        lat,
		Lon:        lon,
		DepthKm:    depth,
		Magnitude:  mag,
		Format:     FormatXML,
		RawPayload: data,
	}
	if core.MagUncer != nil {
		u, uerr := strconv.ParseFloat(strings.TrimSpace(*core.MagUncer), 64)
		if uerr != nil {
			return EventRecord{}, Errorf(KindMalformedMessage, "xml alert mag_uncer %q: %w", *core.MagUncer, uerr)
		}
		event.MagnitudeUncertainty = &u
	}
	if core.NumStations != nil {
		n, nerr := strconv.Atoi(strings.TrimSpace(*core.NumStations))
		if nerr != nil {
			return EventRecord{}, Errorf(KindMalformedMessage, "xml alert num_stations %q: %w", *core.NumStations, nerr)
		}
		event.NumStations = &n
	}
	// Optional like mag_uncer, and held to the same standard: absent is
	// fine, malformed is an error.
	if msg.Timestamp != "" {
		t, terr := parseUTCTime(msg.Timestamp)
		if terr != nil {
			return EventRecord{}, Errorf(KindMalformedMessage, "xml alert timestamp %q: %w", msg.Timestamp, terr)
		}
		event.AlertTime = t
	}

	if err := validateEventRecord(event); err != nil {
		return EventRecord{}, err
	}
	return event, nil
}

func requiredXMLFloat(v *string, name string) (float64, error) {
	if v == nil {
		return 0, Errorf(KindMalformedMessage, "xml alert missing %s", name)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return 0, Errorf(KindMalformedMessage, "xml alert %s %q: %w", name, *v, err)
	}
	return f, nil
}

// parseXMLGroundMotion pulls the predicted contour set out of a ShakeAlert
// event_message payload.
func parseXMLGroundMotion(data []byte) (GroundMotionInput, error) {
	var msg xmlEventMessage
	if err := xml.Unmarshal(data, &msg); err != nil {
		return nil, Errorf(KindMalformedMessage, "decode xml alert: %w", err)
	}
	if msg.GMInfo == nil || len(msg.GMInfo.Contours) == 0 {
		return SyntheticContours{}, nil
	}

	levels := make(map[int][]geomath.Point, len(msg.GMInfo.Contours))
	for _, c := range msg.GMInfo.Contours {
		lvl, err := truncateLevel(c.MMI)
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

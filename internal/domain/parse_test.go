package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullJSONAlert = `{
  "event_id": "nc73589710",
  "shakealert_event_messages": [
    {
      "version": 1,
      "message_id": "4552",
      "mag": "4.0",
      "depth": "8.5",
      "lat": "34.10",
      "lon": "-118.30",
      "origin_time": "2021-05-11T14:02:07.600Z",
      "timestamp": "2021-05-11T14:02:13.000Z"
    },
    {
      "version": 0,
      "message_id": "4551",
      "mag": "3.9",
      "depth": "8.0",
      "lat": "34.20",
      "lon": "-118.40",
      "origin_time": "2021-05-11T14:02:07.500Z",
      "timestamp": "2021-05-11T14:02:12.100Z"
    },
    {
      "version": 2,
      "message_id": "4553",
      "mag": 4.2,
      "mag_uncer": 0.2,
      "depth": 9.5,
      "lat": 34.05,
      "lon": -118.25,
      "num_stations": "11",
      "origin_time": "2021-05-11T14:02:07.800Z",
      "timestamp": "2021-05-11T14:02:15.400Z",
      "ground_motion_contours": [
        {"mmi": "4.0", "polygon": "34.35,-118.25 34.05,-117.95 33.75,-118.25 34.05,-118.55"}
      ]
    }
  ],
  "preferred_origin": {
    "latitude": 34.06,
    "longitude": -118.26,
    "depth": 10.1,
    "magnitude": 4.3,
    "event_time": "2021-05-11 14:02:08.000000 (UTC)"
  }
}`

const fullXMLAlert = `<?xml version="1.0" encoding="UTF-8"?>
<event_message timestamp="2021-05-11T14:02:15.400Z">
  <core_info id="ew 4553">
    <mag>4.2</mag>
    <mag_uncer>0.2</mag_uncer>
    <lat>34.05</lat>
    <lon>-118.25</lon>
    <depth>9.5</depth>
    <orig_time>2021-05-11T14:02:07.800Z</orig_time>
    <num_stations>11</num_stations>
  </core_info>
  <gm_info>
    <gmcontour_pred>
      <contour>
        <MMI>5.0</MMI>
        <polygon>34.20,-118.25 34.05,-118.10 33.90,-118.25 34.05,-118.40</polygon>
      </contour>
      <contour>
        <MMI>4.0</MMI>
        <polygon>34.35,-118.25 34.05,-117.95 33.75,-118.25 34.05,-118.55</polygon>
      </contour>
    </gmcontour_pred>
  </gm_info>
</event_message>`

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		want    Format
		wantErr bool
	}{
		{"json", `{"event_id":"x"}`, FormatJSON, false},
		{"json leading whitespace", "\n\t {\"a\":1}", FormatJSON, false},
		{"xml", `<event_message/>`, FormatXML, false},
		{"xml leading whitespace", "  <a/>", FormatXML, false},
		{"empty", "", FormatAuto, true},
		{"whitespace only", " \n\t", FormatAuto, true},
		{"unknown lead", "magnitude=4.2", FormatAuto, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectFormat([]byte(tc.data))
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindMalformedMessage, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseJSONAlert(t *testing.T) {
	event, override, err := Parse([]byte(fullJSONAlert), FormatAuto)
	require.NoError(t, err)

	// Messages arrive out of version order; version 2 is canonical.
	assert.Equal(t, "nc73589710", event.ID)
	assert.Equal(t, 4.2, event.Magnitude)
	assert.Equal(t, 9.5, event.DepthKm)
	assert.Equal(t, 34.05, event.Lat)
	assert.Equal(t, -118.25, event.Lon)
	assert.Equal(t, FormatJSON, event.Format)
	assert.False(t, event.Authoritative)

	require.NotNil(t, event.MagnitudeUncertainty)
	assert.Equal(t, 0.2, *event.MagnitudeUncertainty)
	require.NotNil(t, event.NumStations)
	assert.Equal(t, 11, *event.NumStations)

	assert.Equal(t, time.Date(2021, 5, 11, 14, 2, 7, 800e6, time.UTC), event.OriginTime)
	// Alert issue time comes from the earliest message.
	assert.Equal(t, time.Date(2021, 5, 11, 14, 2, 12, 100e6, time.UTC), event.AlertTime)

	require.NotNil(t, override)
	assert.Equal(t, "nc73589710", override.EventID)
	assert.Equal(t, 4.3, override.Magnitude)
	assert.Equal(t, 34.06, override.Lat)
	assert.Equal(t, time.Date(2021, 5, 11, 14, 2, 8, 0, time.UTC), override.OriginTime)
}

func TestParseJSONAlertFallbackID(t *testing.T) {
	payload := `{
	  "shakealert_event_messages": [
	    {"version": 0, "message_id": "4551", "mag": 3.9, "depth": 8.0,
	     "lat": 34.20, "lon": -118.40, "origin_time": "2021-05-11T14:02:07.500Z"}
	  ]
	}`
	event, override, err := Parse([]byte(payload), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "ew 4551", event.ID)
	assert.Nil(t, override)
	assert.True(t, event.AlertTime.IsZero())
}

func TestParseJSONAlertErrors(t *testing.T) {
	cases := map[string]string{
		"not json":          `{broken`,
		"no messages":       `{"event_id":"x","shakealert_event_messages":[]}`,
		"missing magnitude": `{"event_id":"x","shakealert_event_messages":[{"depth":8,"lat":34,"lon":-118,"origin_time":"2021-05-11T14:02:07.500Z"}]}`,
		"missing depth":     `{"event_id":"x","shakealert_event_messages":[{"mag":4,"lat":34,"lon":-118,"origin_time":"2021-05-11T14:02:07.500Z"}]}`,
		"missing epicenter": `{"event_id":"x","shakealert_event_messages":[{"mag":4,"depth":8,"origin_time":"2021-05-11T14:02:07.500Z"}]}`,
		"bad origin time":   `{"event_id":"x","shakealert_event_messages":[{"mag":4,"depth":8,"lat":34,"lon":-118,"origin_time":"yesterday"}]}`,
		"bad timestamp":     `{"event_id":"x","shakealert_event_messages":[{"mag":4,"depth":8,"lat":34,"lon":-118,"origin_time":"2021-05-11T14:02:07.500Z","timestamp":"not-a-time"}]}`,
		"no id anywhere":    `{"shakealert_event_messages":[{"mag":4,"depth":8,"lat":34,"lon":-118,"origin_time":"2021-05-11T14:02:07.500Z"}]}`,
		"quoted garbage":    `{"event_id":"x","shakealert_event_messages":[{"mag":"hot","depth":8,"lat":34,"lon":-118,"origin_time":"2021-05-11T14:02:07.500Z"}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse([]byte(payload), FormatJSON)
			require.Error(t, err)
			assert.Equal(t, KindMalformedMessage, KindOf(err))
		})
	}
}

func TestParseJSONAlertInvalidCoordinate(t *testing.T) {
	payload := `{"event_id":"x","shakealert_event_messages":[
	  {"mag":4,"depth":8,"lat":95.0,"lon":-118,"origin_time":"2021-05-11T14:02:07.500Z"}
	]}`
	_, _, err := Parse([]byte(payload), FormatJSON)
	require.Error(t, err)
	assert.Equal(t, KindInvalidCoordinate, KindOf(err))
}

func TestParseXMLAlert(t *testing.T) {
	event, override, err := Parse([]byte(fullXMLAlert), FormatAuto)
	require.NoError(t, err)

	assert.Equal(t, "ew 4553", event.ID)
	assert.Equal(t, 4.2, event.Magnitude)
	assert.Equal(t, 9.5, event.DepthKm)
	assert.Equal(t, FormatXML, event.Format)
	assert.Nil(t, override, "the XML dialect never embeds a catalog origin")

	require.NotNil(t, event.NumStations)
	assert.Equal(t, 11, *event.NumStations)
	assert.Equal(t, time.Date(2021, 5, 11, 14, 2, 15, 400e6, time.UTC), event.AlertTime)
}

func TestParseXMLAlertErrors(t *testing.T) {
	cases := map[string]string{
		"not xml":        `<event_message`,
		"no core info":   `<event_message></event_message>`,
		"missing id":     `<event_message><core_info><mag>4</mag><lat>34</lat><lon>-118</lon><depth>8</depth><orig_time>2021-05-11T14:02:07.500Z</orig_time></core_info></event_message>`,
		"missing mag":    `<event_message><core_info id="e"><lat>34</lat><lon>-118</lon><depth>8</depth><orig_time>2021-05-11T14:02:07.500Z</orig_time></core_info></event_message>`,
		"missing depth":  `<event_message><core_info id="e"><mag>4</mag><lat>34</lat><lon>-118</lon><orig_time>2021-05-11T14:02:07.500Z</orig_time></core_info></event_message>`,
		"bad depth":      `<event_message><core_info id="e"><mag>4</mag><lat>34</lat><lon>-118</lon><depth>deep</depth><orig_time>2021-05-11T14:02:07.500Z</orig_time></core_info></event_message>`,
		"missing origin": `<event_message><core_info id="e"><mag>4</mag><lat>34</lat><lon>-118</lon><depth>8</depth></core_info></event_message>`,
		"bad timestamp":  `<event_message timestamp="not-a-time"><core_info id="e"><mag>4</mag><lat>34</lat><lon>-118</lon><depth>8</depth><orig_time>2021-05-11T14:02:07.500Z</orig_time></core_info></event_message>`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse([]byte(payload), FormatXML)
			require.Error(t, err)
			assert.Equal(t, KindMalformedMessage, KindOf(err))
		})
	}
}

func TestParseAutoDetectMatchesExplicit(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		auto, autoOverride, err := Parse([]byte(fullJSONAlert), FormatAuto)
		require.NoError(t, err)
		explicit, explicitOverride, err := Parse([]byte(fullJSONAlert), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, explicit, auto)
		assert.Equal(t, explicitOverride, autoOverride)
	})

	t.Run("xml", func(t *testing.T) {
		auto, _, err := Parse([]byte(fullXMLAlert), FormatAuto)
		require.NoError(t, err)
		explicit, _, err := Parse([]byte(fullXMLAlert), FormatXML)
		require.NoError(t, err)
		assert.Equal(t, explicit, auto)
	})
}

func TestParseGroundMotionJSON(t *testing.T) {
	gm, err := ParseGroundMotion([]byte(fullJSONAlert), FormatAuto)
	require.NoError(t, err)

	supplied, ok := gm.(SuppliedContours)
	require.True(t, ok)
	require.Contains(t, supplied.Levels, 4)
	assert.Len(t, supplied.Levels[4], 4)
	assert.Equal(t, 34.35, supplied.Levels[4][0].Lat)
	assert.Equal(t, -118.25, supplied.Levels[4][0].Lon)
}

func TestParseGroundMotionXML(t *testing.T) {
	gm, err := ParseGroundMotion([]byte(fullXMLAlert), FormatAuto)
	require.NoError(t, err)

	supplied, ok := gm.(SuppliedContours)
	require.True(t, ok)
	assert.Len(t, supplied.Levels, 2)
	assert.Contains(t, supplied.Levels, 4)
	assert.Contains(t, supplied.Levels, 5)
}

func TestParseGroundMotionAbsent(t *testing.T) {
	payload := `{"event_id":"x","shakealert_event_messages":[
	  {"mag":4,"depth":8,"lat":34,"lon":-118,"origin_time":"2021-05-11T14:02:07.500Z"}
	]}`
	gm, err := ParseGroundMotion([]byte(payload), FormatJSON)
	require.NoError(t, err)
	assert.IsType(t, SyntheticContours{}, gm)
}

func TestParseGroundMotionBadPolygon(t *testing.T) {
	payload := `{"event_id":"x","shakealert_event_messages":[
	  {"mag":4,"depth":8,"lat":34,"lon":-118,"origin_time":"2021-05-11T14:02:07.500Z",
	   "ground_motion_contours":[{"mmi":"4.0","polygon":"34.35;-118.25"}]}
	]}`
	_, err := ParseGroundMotion([]byte(payload), FormatJSON)
	require.Error(t, err)
	assert.Equal(t, KindMalformedMessage, KindOf(err))
}

func TestParseUTCTimeLayouts(t *testing.T) {
	want := time.Date(2021, 5, 11, 14, 2, 8, 0, time.UTC)
	for _, s := range []string{
		"2021-05-11T14:02:08Z",
		"2021-05-11T14:02:08",
		"2021-05-11 14:02:08",
		"2021-05-11 14:02:08.000000 (UTC)",
	} {
		got, err := parseUTCTime(s)
		require.NoError(t, err, "timestamp %q", s)
		assert.True(t, got.Equal(want), "timestamp %q parsed as %v", s, got)
	}

	_, err := parseUTCTime("last tuesday")
	assert.Error(t, err)
}

func TestTruncateLevel(t *testing.T) {
	cases := map[string]int{
		"4.0":  4,
		"5.5":  5,
		"9.99": 9,
		"10.0": 10,
		"2":    2,
	}
	for in, want := range cases {
		got, err := truncateLevel(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	for _, bad := range []string{"", "strong", "IV"} {
		_, err := truncateLevel(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseOverride(t *testing.T) {
	payload := `{
	  "event_id": "nc73589710",
	  "latitude": "34.06",
	  "longitude": "-118.26",
	  "depth": 10.1,
	  "magnitude": 4.3,
	  "event_time": "2021-05-11T14:02:08Z"
	}`
	o, err := ParseOverride([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "nc73589710", o.EventID)
	assert.Equal(t, 34.06, o.Lat)
	assert.Equal(t, -118.26, o.Lon)
	assert.Equal(t, 10.1, o.DepthKm)
	assert.Equal(t, 4.3, o.Magnitude)

	t.Run("missing event_id", func(t *testing.T) {
		_, err := ParseOverride([]byte(`{"latitude":34,"longitude":-118,"depth":10,"magnitude":4,"event_time":"2021-05-11T14:02:08Z"}`))
		require.Error(t, err)
		assert.Equal(t, KindMalformedMessage, KindOf(err))
	})

	t.Run("incomplete origin", func(t *testing.T) {
		_, err := ParseOverride([]byte(`{"event_id":"x","latitude":34}`))
		require.Error(t, err)
		assert.Equal(t, KindMalformedMessage, KindOf(err))
	})
}

package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quakewatch/alert-summary/internal/domain"
	"github.com/quakewatch/alert-summary/internal/observability"
)

const jsonAlert = `{
  "event_id": "nc73589710",
  "shakealert_event_messages": [
    {
      "version": 0,
      "message_id": "4551",
      "mag": "3.9",
      "mag_uncer": "0.3",
      "depth": "8.0",
      "lat": "34.20",
      "lon": "-118.40",
      "num_stations": 6,
      "origin_time": "2026-05-11T14:02:07.500Z",
      "timestamp": "2026-05-11T14:02:12.100Z"
    },
    {
      "version": 2,
      "message_id": "4553",
      "mag": "4.2",
      "mag_uncer": "0.2",
      "depth": "9.5",
      "lat": "34.05",
      "lon": "-118.25",
      "num_stations": 11,
      "origin_time": "2026-05-11T14:02:07.800Z",
      "timestamp": "2026-05-11T14:02:15.400Z",
      "ground_motion_contours": [
        {"mmi": "4.0", "polygon": "34.35,-118.25 34.05,-117.95 33.75,-118.25 34.05,-118.55"},
        {"mmi": "5.0", "polygon": "34.20,-118.25 34.05,-118.10 33.90,-118.25 34.05,-118.40"}
      ]
    }
  ]
}`

const xmlAlert = `<?xml version="1.0" encoding="UTF-8"?>
<event_message timestamp="2026-05-11T14:02:15.400Z">
  <core_info id="ew 4553">
    <mag>4.2</mag>
    <mag_uncer>0.2</mag_uncer>
    <lat>34.05</lat>
    <lon>-118.25</lon>
    <depth>9.5</depth>
    <orig_time>2026-05-11T14:02:07.800Z</orig_time>
    <num_stations>11</num_stations>
  </core_info>
</event_message>`

func testRoster() []domain.CityEntry {
	return []domain.CityEntry{
		{Name: "Los Angeles", Lat: 34.0522, Lon: -118.2437, Population: 3900000, Tier: domain.TierA},
		{Name: "Pasadena", Lat: 34.1478, Lon: -118.1445, Population: 140000, Tier: domain.TierB},
		{Name: "Long Beach", Lat: 33.7701, Lon: -118.1937, Population: 460000, Tier: domain.TierB},
		{Name: "San Diego", Lat: 32.7157, Lon: -117.1611, Population: 1380000, Tier: domain.TierA},
		{Name: "Fresno", Lat: 36.7378, Lon: -119.7871, Population: 540000, Tier: domain.TierB},
	}
}

func testProximity() domain.ProximityOptions {
	return domain.ProximityOptions{
		MaxResults:           4,
		RadiusBaseKm:         60,
		RadiusPerMagnitudeKm: 40,
		Attenuation:          testAttenuation(),
		SWaveVelocityKmS:     3.55,
	}
}

func testContours() domain.ContourOptions {
	return domain.ContourOptions{
		MagMapChange:  5.0,
		MinLevelSmall: 3,
		MinLevelLarge: 4,
		Attenuation:   testAttenuation(),
	}
}

func testAttenuation() domain.AttenuationParams {
	return domain.AttenuationParams{
		Intercept:        1.7,
		MagnitudeCoeff:   1.5,
		DistanceCoeff:    3.0,
		DistanceOffsetKm: 10,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testRoster(), testProximity(), testContours(), logger, observability.NewMetricsForTesting())
}

func TestSummarizeJSONAlert(t *testing.T) {
	eng := newTestEngine(t)

	report, err := eng.Summarize(context.Background(), RunInput{Alert: []byte(jsonAlert), Format: domain.FormatAuto})
	require.NoError(t, err)

	assert.Equal(t, "nc73589710", report.Event.ID)
	assert.Equal(t, 4.2, report.Event.Magnitude)
	assert.Equal(t, 9.5, report.Event.DepthKm)
	assert.Equal(t, domain.FormatJSON, report.Event.Format)
	assert.False(t, report.Event.Authoritative)
	assert.Nil(t, report.LocationError)

	require.NotEmpty(t, report.Cities)
	assert.Equal(t, "Los Angeles", report.Cities[0].Name)
	for _, c := range report.Cities {
		assert.NotEqual(t, "Fresno", c.Name, "Fresno is outside the search radius")
	}

	// Supplied contours, descending level, both retained at magnitude 4.2
	// because the small-event floor is MMI 3.
	require.Len(t, report.Contours, 2)
	assert.Equal(t, 5, report.Contours[0].Level)
	assert.Equal(t, 4, report.Contours[1].Level)
	assert.Equal(t, "#afff93", report.Contours[0].Color)
}

func TestSummarizeXMLAlert(t *testing.T) {
	eng := newTestEngine(t)

	report, err := eng.Summarize(context.Background(), RunInput{Alert: []byte(xmlAlert), Format: domain.FormatAuto})
	require.NoError(t, err)

	assert.Equal(t, "ew 4553", report.Event.ID)
	assert.Equal(t, domain.FormatXML, report.Event.Format)

	// No gm_info in the payload, so contours are synthesized octagons.
	require.NotEmpty(t, report.Contours)
	for _, c := range report.Contours {
		assert.Len(t, c.Ring, 8)
	}
}

func TestSummarizeExplicitOverride(t *testing.T) {
	eng := newTestEngine(t)

	override := &domain.OriginOverride{
		EventID:    "nc73589710",
		OriginTime: time.Date(2026, 5, 11, 14, 2, 8, 0, time.UTC),
		Lat:        34.10,
		Lon:        -118.20,
		DepthKm:    10.2,
		Magnitude:  4.5,
	}
	report, err := eng.Summarize(context.Background(), RunInput{
		Alert:    []byte(jsonAlert),
		Format:   domain.FormatJSON,
		Override: override,
	})
	require.NoError(t, err)

	assert.True(t, report.Event.Authoritative)
	assert.Equal(t, 4.5, report.Event.Magnitude)
	assert.Equal(t, 34.10, report.Event.Lat)

	require.NotNil(t, report.LocationError)
	assert.Greater(t, report.LocationError.DistanceKm, 0.0)
	assert.NotEmpty(t, report.LocationError.CompassDirection)
}

func TestSummarizeIncompatibleOverride(t *testing.T) {
	eng := newTestEngine(t)

	override := &domain.OriginOverride{
		EventID:    "nc00000000",
		OriginTime: time.Date(2026, 5, 11, 14, 2, 8, 0, time.UTC),
		Lat:        34.10,
		Lon:        -118.20,
		DepthKm:    10.2,
		Magnitude:  4.5,
	}
	_, err := eng.Summarize(context.Background(), RunInput{
		Alert:    []byte(jsonAlert),
		Format:   domain.FormatJSON,
		Override: override,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindIncompatibleOverride, domain.KindOf(err))
}

func TestSummarizeMalformedPayload(t *testing.T) {
	eng := newTestEngine(t)

	for name, payload := range map[string]string{
		"empty":        "",
		"unknown lead": "magnitude=4.2",
		"bad json":     "{not json",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := eng.Summarize(context.Background(), RunInput{Alert: []byte(payload), Format: domain.FormatAuto})
			require.Error(t, err)
			assert.Equal(t, domain.KindMalformedMessage, domain.KindOf(err))
		})
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2026, 5, 11, 14, 3, 0, 0, time.UTC))
	domain.SetClock(fake)
	defer domain.SetClock(nil)

	eng := newTestEngine(t)

	first, err := eng.Summarize(context.Background(), RunInput{Alert: []byte(jsonAlert), Format: domain.FormatAuto})
	require.NoError(t, err)
	second, err := eng.Summarize(context.Background(), RunInput{Alert: []byte(jsonAlert), Format: domain.FormatAuto})
	require.NoError(t, err)

	assert.Equal(t, fake.Now().UTC(), first.CreatedAt)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeat run diverged (-first +second):\n%s", diff)
	}
}

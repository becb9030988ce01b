package render

import (
	"encoding/json"
	"testing"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quakewatch/alert-summary/internal/domain"
	"github.com/quakewatch/alert-summary/internal/geomath"
)

func sampleReport() domain.ReportModel {
	uncer := 0.2
	stations := 11
	return domain.ReportModel{
		Event: domain.EventRecord{
			ID:                   "nc73589710",
			OriginTime:           time.Date(2026, 5, 11, 14, 2, 7, 0, time.UTC),
			Lat:                  34.05,
			Lon:                  -118.25,
			DepthKm:              9.5,
			Magnitude:            4.5,
			MagnitudeUncertainty: &uncer,
			NumStations:          &stations,
			Format:               domain.FormatJSON,
			Authoritative:        true,
		},
		Cities: []domain.AffectedCity{
			{
				CityEntry:        domain.CityEntry{Name: "Los Angeles", Lat: 34.0522, Lon: -118.2437, Population: 3900000, Tier: domain.TierA},
				DistanceKm:       0.62,
				Intensity:        5,
				CompassDirection: "SW",
				WarningSeconds:   1.3,
			},
			{
				CityEntry:        domain.CityEntry{Name: "Pasadena", Lat: 34.1478, Lon: -118.1445, Population: 140000, Tier: domain.TierB},
				DistanceKm:       14.2,
				Intensity:        4,
				CompassDirection: "SW",
				WarningSeconds:   3.1,
			},
		},
		Contours: []domain.IntensityContour{
			{
				Level: 5,
				Ring: []geomath.Point{
					{Lat: 34.20, Lon: -118.25},
					{Lat: 34.05, Lon: -118.40},
					{Lat: 33.90, Lon: -118.25},
					{Lat: 34.05, Lon: -118.10},
				},
				Color: "#afff93",
			},
		},
		LocationError: &domain.LocationError{DistanceKm: 6.4, CompassDirection: "NE"},
		CreatedAt:     time.Date(2026, 5, 11, 14, 3, 0, 0, time.UTC),
	}
}

func TestGeoJSON(t *testing.T) {
	data, err := GeoJSON(sampleReport())
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 4)

	epicenter := fc.Features[0]
	require.True(t, epicenter.Geometry.IsPoint())
	assert.Equal(t, []float64{-118.25, 34.05}, epicenter.Geometry.Point)
	assert.Equal(t, "nc73589710", epicenter.Properties["event_id"])
	assert.Equal(t, true, epicenter.Properties["authoritative"])
	assert.Equal(t, 6.4, epicenter.Properties["location_error_km"])

	city := fc.Features[1]
	require.True(t, city.Geometry.IsPoint())
	assert.Equal(t, "Los Angeles", city.Properties["name"])
	assert.Equal(t, 0.6, city.Properties["distance_km"])

	contour := fc.Features[3]
	require.True(t, contour.Geometry.IsPolygon())
	assert.Equal(t, "#afff93", contour.Properties["fill"])

	ring := contour.Geometry.Polygon[0]
	require.Len(t, ring, 5, "polygon ring must repeat the first vertex")
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Equal(t, []float64{-118.25, 34.20}, ring[0])
}

func TestGeoJSONDeterministic(t *testing.T) {
	report := sampleReport()
	first, err := GeoJSON(report)
	require.NoError(t, err)
	second, err := GeoJSON(report)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGeoJSONIsValidJSON(t *testing.T) {
	data, err := GeoJSON(sampleReport())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])
}

func TestText(t *testing.T) {
	out := Text(sampleReport())

	assert.Contains(t, out, "Event nc73589710: M4.5 at 34.0500, -118.2500, depth 9.5 km")
	assert.Contains(t, out, "(catalog origin)")
	assert.Contains(t, out, "Magnitude uncertainty: ±0.2")
	assert.Contains(t, out, "Reporting stations: 11")
	assert.Contains(t, out, "off by 6.4 km to the NE")
	assert.Contains(t, out, "Los Angeles: 0.6 km SW of the epicenter, MMI 5, ~1s warning")
	assert.Contains(t, out, "Intensity contours (MMI): 5")
}

func TestTextNoCities(t *testing.T) {
	report := sampleReport()
	report.Cities = nil
	report.Event.Authoritative = false
	report.LocationError = nil

	out := Text(report)
	assert.Contains(t, out, "No population centers within the affected radius.")
	assert.Contains(t, out, "(real-time estimate)")
	assert.NotContains(t, out, "off by")
}

// Package render turns an assembled report into output documents. Renderers
// never mutate the report; every call with the same report produces the same
// bytes.
package render

import (
	"encoding/json"
	"fmt"
	"math"

	geojson "github.com/paulmach/go.geojson"

	"github.com/quakewatch/alert-summary/internal/domain"
	"github.com/quakewatch/alert-summary/internal/geomath"
)

// GeoJSON renders the report as a FeatureCollection: one epicenter point,
// one point per affected city, and one polygon per intensity contour.
// Coordinates follow the GeoJSON axis order, longitude first.
func GeoJSON(report domain.ReportModel) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	epicenter := geojson.NewPointFeature(coords(report.Event.Epicenter()))
	epicenter.SetProperty("feature", "epicenter")
	epicenter.SetProperty("event_id", report.Event.ID)
	epicenter.SetProperty("magnitude", report.Event.Magnitude)
	epicenter.SetProperty("depth_km", report.Event.DepthKm)
	epicenter.SetProperty("origin_time", report.Event.OriginTime)
	epicenter.SetProperty("authoritative", report.Event.Authoritative)
	if report.LocationError != nil {
		epicenter.SetProperty("location_error_km", round1(report.LocationError.DistanceKm))
		epicenter.SetProperty("location_error_direction", report.LocationError.CompassDirection)
	}
	fc.AddFeature(epicenter)

	for _, city := range report.Cities {
		f := geojson.NewPointFeature(coords(geomath.Point{Lat: city.Lat, Lon: city.Lon}))
		f.SetProperty("feature", "city")
		f.SetProperty("name", city.Name)
		f.SetProperty("population", city.Population)
		f.SetProperty("distance_km", round1(city.DistanceKm))
		f.SetProperty("direction", city.CompassDirection)
		f.SetProperty("mmi", city.Intensity)
		f.SetProperty("warning_seconds", round1(city.WarningSeconds))
		fc.AddFeature(f)
	}

	for _, contour := range report.Contours {
		f := geojson.NewPolygonFeature(polygonCoords(contour.Ring))
		f.SetProperty("feature", "contour")
		f.SetProperty("mmi", contour.Level)
		f.SetProperty("fill", contour.Color)
		fc.AddFeature(f)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("marshal feature collection: %w", err)
	}
	return data, nil
}

func coords(p geomath.Point) []float64 {
	return []float64{p.Lon, p.Lat}
}

// polygonCoords converts an implicitly closed ring into GeoJSON polygon
// coordinates, duplicating the first vertex at the end as the format requires.
func polygonCoords(ring []geomath.Point) [][][]float64 {
	outer := make([][]float64, 0, len(ring)+1)
	for _, p := range ring {
		outer = append(outer, coords(p))
	}
	if len(ring) > 0 {
		outer = append(outer, coords(ring[0]))
	}
	return [][][]float64{outer}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

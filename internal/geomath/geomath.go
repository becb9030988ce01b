// Package geomath provides the geodesic primitives used by the alert summary
// engine: great-circle distance, initial bearing, point-in-ring containment,
// and ring centroids. All functions are pure and operate on WGS-84 decimal
// degree coordinates.
package geomath

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for all distance conversions.
const EarthRadiusKm = 6371.009

// ErrInvalidCoordinate reports a non-finite or out-of-range latitude/longitude.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a WGS-84 latitude/longitude coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate returns ErrInvalidCoordinate when either component is NaN,
// infinite, or outside [-90,90] / [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, p.Lat)
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// DistanceKm returns the great-circle distance between two points in
// kilometers.
func DistanceKm(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return a.latLng().Distance(b.latLng()).Radians() * EarthRadiusKm, nil
}

// WithinRadius reports whether p lies within radiusKm of center.
func WithinRadius(p, center Point, radiusKm float64) (bool, error) {
	d, err := DistanceKm(p, center)
	if err != nil {
		return false, err
	}
	return d <= radiusKm, nil
}

// InitialBearing returns the initial compass bearing in degrees [0,360) when
// traveling along the great circle from one point toward another.
func InitialBearing(from, to Point) (float64, error) {
	if err := from.Validate(); err != nil {
		return 0, err
	}
	if err := to.Validate(); err != nil {
		return 0, err
	}

	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLon := (to.Lon - from.Lon) * math.Pi / 180

	x := math.Sin(dLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	bearing := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(bearing+360, 360), nil
}

// compassPoints are ordered so that index 0 covers bearings [22.5, 67.5).
var compassPoints = [8]string{"NE", "E", "SE", "S", "SW", "W", "NW", "N"}

// CompassDirection converts a bearing in degrees to an 8-point compass label.
func CompassDirection(bearingDeg float64) string {
	idx := bearingDeg - 22.5
	if idx < 0 {
		idx += 360
	}
	return compassPoints[int(idx/45)%8]
}

// Destination returns the point reached by traveling distanceKm from start
// along the given initial bearing.
func Destination(start Point, bearingDeg, distanceKm float64) (Point, error) {
	if err := start.Validate(); err != nil {
		return Point{}, err
	}

	lat1 := start.Lat * math.Pi / 180
	lon1 := start.Lon * math.Pi / 180
	brng := bearingDeg * math.Pi / 180
	delta := distanceKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)

	// Normalize longitude to [-180,180].
	lonDeg := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return Point{Lat: lat2 * 180 / math.Pi, Lon: lonDeg}, nil
}

// PointInRing reports whether p lies inside the polygon described by ring.
// The ring is treated as implicitly closed; a duplicated closing vertex is
// tolerated. Rings with fewer than three distinct vertices contain nothing.
func PointInRing(p Point, ring []Point) bool {
	verts := dropClosingVertex(ring)
	if len(verts) < 3 {
		return false
	}

	pts := make([]s2.Point, len(verts))
	for i, v := range verts {
		pts[i] = s2.PointFromLatLng(v.latLng())
	}

	loop := s2.LoopFromPoints(pts)
	// Normalize so the loop encloses at most half the sphere regardless of
	// input winding.
	loop.Normalize()
	return loop.ContainsPoint(s2.PointFromLatLng(p.latLng()))
}

// PolygonCentroid returns the vertex centroid of a ring, suitable for label
// placement. The ring must have at least three distinct vertices.
func PolygonCentroid(ring []Point) (Point, error) {
	verts := dropClosingVertex(ring)
	if len(verts) < 3 {
		return Point{}, fmt.Errorf("%w: ring needs at least 3 distinct vertices, got %d", ErrInvalidCoordinate, len(verts))
	}

	var sum r3.Vector
	for _, v := range verts {
		if err := v.Validate(); err != nil {
			return Point{}, err
		}
		sum = sum.Add(s2.PointFromLatLng(v.latLng()).Vector)
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return Point{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}, nil
}

// IsCounterClockwise reports whether the ring winds counter-clockwise in the
// lon/lat plane (positive signed area, the GeoJSON exterior convention).
func IsCounterClockwise(ring []Point) bool {
	verts := dropClosingVertex(ring)
	if len(verts) < 3 {
		return false
	}
	var area float64
	for i, v := range verts {
		next := verts[(i+1)%len(verts)]
		area += v.Lon*next.Lat - next.Lon*v.Lat
	}
	return area > 0
}

// ReverseRing returns a copy of ring with vertex order reversed.
func ReverseRing(ring []Point) []Point {
	out := make([]Point, len(ring))
	for i, v := range ring {
		out[len(ring)-1-i] = v
	}
	return out
}

// dropClosingVertex strips a duplicated final vertex so rings can be handled
// uniformly in implicit-closure form.
func dropClosingVertex(ring []Point) []Point {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

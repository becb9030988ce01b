package domain

import (
	"sort"

	"github.com/quakewatch/alert-summary/internal/geomath"
)

// Supported intensity levels. MMI 1 ("not felt") never gets a contour.
const (
	MinSupportedLevel = 2
	MaxSupportedLevel = 10
)

// mmiPalette is the standard shaking-intensity color scale, keyed by level.
var mmiPalette = map[int]string{
	2:  "#c8d0fd",
	3:  "#b3f3fe",
	4:  "#b0fff7",
	5:  "#afff93",
	6:  "#fefb3c",
	7:  "#f0c52f",
	8:  "#e58620",
	9:  "#da0201",
	10: "#ab0101",
}

// GroundMotionInput is the sum type over the two contour sources: rings
// supplied by an external ground-motion model, or nothing, in which case
// the builder synthesizes rings from the attenuation model.
type GroundMotionInput interface {
	groundMotion()
}

// SuppliedContours carries externally computed rings keyed by MMI level.
type SuppliedContours struct {
	Levels map[int][]geomath.Point
}

func (SuppliedContours) groundMotion() {}

// SyntheticContours requests fallback synthesis centered on the epicenter.
type SyntheticContours struct{}

func (SyntheticContours) groundMotion() {}

// ContourOptions carry the contour thresholds and styling.
type ContourOptions struct {
	// MagMapChange is the magnitude at or above which the minimum emitted
	// level switches from MinLevelSmall to MinLevelLarge.
	MagMapChange  float64
	MinLevelSmall int
	MinLevelLarge int

	Attenuation AttenuationParams

	// Colors overrides the default palette per level; unlisted levels fall
	// back to the standard scale.
	Colors map[int]string
}

// minLevel resolves the lowest intensity level worth drawing for an event.
func (o ContourOptions) minLevel(magnitude float64) int {
	lvl := o.MinLevelSmall
	if magnitude >= o.MagMapChange {
		lvl = o.MinLevelLarge
	}
	if lvl < MinSupportedLevel {
		lvl = MinSupportedLevel
	}
	return lvl
}

func (o ContourOptions) color(level int) string {
	if c, ok := o.Colors[level]; ok {
		return c
	}
	if c, ok := mmiPalette[level]; ok {
		return c
	}
	return "#ffffff"
}

// BuildContours produces the ordered intensity contour set for an event.
// Supplied rings are validated, deduplicated, and normalized to
// counter-clockwise winding; absent input falls back to synthetic octagons
// whose radii come from the inverted attenuation model, strictly nested from
// low to high intensity. Output is ordered by descending level. An input
// that yields no usable level at all is a KindDegenerateContour error.
func BuildContours(event EventRecord, input GroundMotionInput, opts ContourOptions) ([]IntensityContour, error) {
	if err := event.Epicenter().Validate(); err != nil {
		return nil, Errorf(KindInvalidCoordinate, "epicenter: %w", err)
	}

	var (
		contours []IntensityContour
		err      error
	)
	switch in := input.(type) {
	case SuppliedContours:
		contours, err = buildSuppliedContours(in, event.Magnitude, opts)
	case SyntheticContours, nil:
		contours, err = buildSyntheticContours(event, opts)
	default:
		return nil, Errorf(KindDegenerateContour, "unsupported ground motion input %T", input)
	}
	if err != nil {
		return nil, err
	}
	if len(contours) == 0 {
		return nil, Errorf(KindDegenerateContour, "no usable intensity levels for event %q", event.ID)
	}

	sort.Slice(contours, func(i, j int) bool {
		return contours[i].Level > contours[j].Level
	})
	return contours, nil
}

func buildSuppliedContours(in SuppliedContours, magnitude float64, opts ContourOptions) ([]IntensityContour, error) {
	minLevel := opts.minLevel(magnitude)

	out := make([]IntensityContour, 0, len(in.Levels))
	for level, ring := range in.Levels {
		if level < minLevel || level > MaxSupportedLevel {
			continue
		}
		normalized, err := normalizeRing(ring, level)
		if err != nil {
			return nil, err
		}
		if normalized == nil {
			// Degenerate ring: dropped, not emitted empty.
			continue
		}
		out = append(out, IntensityContour{
			Level: level,
			Ring:  normalized,
			Color: opts.color(level),
		})
	}
	return out, nil
}

// normalizeRing validates vertices, strips a duplicated closing vertex and
// consecutive duplicates, clamps near-boundary coordinates, and fixes winding
// to counter-clockwise. Returns nil for rings that collapse below three
// distinct vertices.
func normalizeRing(ring []geomath.Point, level int) ([]geomath.Point, error) {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}

	cleaned := make([]geomath.Point, 0, len(ring))
	for _, v := range ring {
		v = clampPoint(v)
		if err := v.Validate(); err != nil {
			return nil, Errorf(KindInvalidCoordinate, "contour level %d: %w", level, err)
		}
		if len(cleaned) > 0 && cleaned[len(cleaned)-1] == v {
			continue
		}
		cleaned = append(cleaned, v)
	}
	if len(cleaned) < 3 {
		return nil, nil
	}

	if !geomath.IsCounterClockwise(cleaned) {
		cleaned = geomath.ReverseRing(cleaned)
	}
	return cleaned, nil
}

// clampPoint snaps coordinates a hair over the valid boundary back onto it,
// absorbing float noise from upstream contour generators.
func clampPoint(p geomath.Point) geomath.Point {
	const eps = 1e-6
	if p.Lat > 90 && p.Lat <= 90+eps {
		p.Lat = 90
	}
	if p.Lat < -90 && p.Lat >= -90-eps {
		p.Lat = -90
	}
	if p.Lon > 180 && p.Lon <= 180+eps {
		p.Lon = 180
	}
	if p.Lon < -180 && p.Lon >= -180-eps {
		p.Lon = -180
	}
	return p
}

// syntheticBearings walk counter-clockwise from due north so synthesized
// octagons satisfy the winding convention without a reversal pass.
var syntheticBearings = [8]float64{0, 315, 270, 225, 180, 135, 90, 45}

func buildSyntheticContours(event EventRecord, opts ContourOptions) ([]IntensityContour, error) {
	minLevel := opts.minLevel(event.Magnitude)
	epicenter := event.Epicenter()

	var out []IntensityContour
	for level := MaxSupportedLevel; level >= minLevel; level-- {
		radius := opts.Attenuation.RadiusKm(event.Magnitude, level)
		if radius <= 0 {
			// Shaking never attenuates down to this level: degenerate, drop.
			continue
		}

		ring := make([]geomath.Point, 0, len(syntheticBearings))
		for _, bearing := range syntheticBearings {
			v, err := geomath.Destination(epicenter, bearing, radius)
			if err != nil {
				return nil, Errorf(KindInvalidCoordinate, "contour level %d: %w", level, err)
			}
			ring = append(ring, v)
		}
		out = append(out, IntensityContour{
			Level: level,
			Ring:  ring,
			Color: opts.color(level),
		})
	}
	return out, nil
}

package domain

import (
	"math"
	"sort"

	"github.com/quakewatch/alert-summary/internal/geomath"
)

// ProximityOptions carry the tunable thresholds for city ranking.
type ProximityOptions struct {
	// MaxResults bounds the returned list; <= 0 means unbounded.
	MaxResults int

	// MaxRadiusKm is a fixed search cutoff. When zero the cutoff is scaled
	// from magnitude: RadiusBaseKm + RadiusPerMagnitudeKm * magnitude.
	MaxRadiusKm          float64
	RadiusBaseKm         float64
	RadiusPerMagnitudeKm float64

	Attenuation AttenuationParams

	// SWaveVelocityKmS is the near-source S-wave velocity used to estimate
	// warning times (Hadley/Kanamori near-source model).
	SWaveVelocityKmS float64
}

// effectiveRadius resolves the search cutoff for an event.
func (o ProximityOptions) effectiveRadius(magnitude float64) float64 {
	if o.MaxRadiusKm > 0 {
		return o.MaxRadiusKm
	}
	return o.RadiusBaseKm + o.RadiusPerMagnitudeKm*magnitude
}

// NearestCities ranks the roster by great-circle distance from the epicenter,
// discarding entries beyond the search radius and truncating to MaxResults.
// Ties are broken by tier (A before B) and then name, so output is fully
// deterministic. An empty roster yields an empty list, not an error.
//
// Linear scan plus sort, O(n log n); roster files are small (low thousands)
// so no spatial index is kept, but nothing here would prevent adding one.
func NearestCities(event EventRecord, roster []CityEntry, opts ProximityOptions) ([]AffectedCity, error) {
	epicenter := event.Epicenter()
	if err := epicenter.Validate(); err != nil {
		return nil, Errorf(KindInvalidCoordinate, "epicenter: %w", err)
	}

	radius := opts.effectiveRadius(event.Magnitude)
	alertLatency := 0.0
	if !event.AlertTime.IsZero() {
		alertLatency = event.AlertTime.Sub(event.OriginTime).Seconds()
	}

	affected := make([]AffectedCity, 0, len(roster))
	for _, city := range roster {
		cityPoint := geomath.Point{Lat: city.Lat, Lon: city.Lon}
		dist, err := geomath.DistanceKm(epicenter, cityPoint)
		if err != nil {
			return nil, Errorf(KindInvalidCoordinate, "city %q: %w", city.Name, err)
		}
		if dist > radius {
			continue
		}

		bearing, err := geomath.InitialBearing(cityPoint, epicenter)
		if err != nil {
			return nil, Errorf(KindInvalidCoordinate, "city %q: %w", city.Name, err)
		}

		affected = append(affected, AffectedCity{
			CityEntry:        city,
			DistanceKm:       dist,
			Intensity:        opts.Attenuation.EstimateIntensity(event.Magnitude, dist),
			CompassDirection: geomath.CompassDirection(bearing),
			WarningSeconds:   warningSeconds(event.DepthKm, dist, opts.SWaveVelocityKmS, alertLatency),
		})
	}

	sort.Slice(affected, func(i, j int) bool {
		if affected[i].DistanceKm != affected[j].DistanceKm {
			return affected[i].DistanceKm < affected[j].DistanceKm
		}
		if affected[i].Tier != affected[j].Tier {
			return affected[i].Tier == TierA
		}
		return affected[i].Name < affected[j].Name
	})

	if opts.MaxResults > 0 && len(affected) > opts.MaxResults {
		affected = affected[:opts.MaxResults]
	}
	return affected, nil
}

// warningSeconds estimates how long after the alert the S-wave reaches a city:
// slant-distance travel time at the near-source velocity minus the alert
// latency, floored at zero.
func warningSeconds(depthKm, distanceKm, sWaveVelocityKmS, alertLatencySeconds float64) float64 {
	if sWaveVelocityKmS <= 0 {
		return 0
	}
	slant := math.Sqrt(depthKm*depthKm + distanceKm*distanceKm)
	return math.Max(slant/sWaveVelocityKmS-alertLatencySeconds, 0)
}

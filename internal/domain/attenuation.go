package domain

import "math"

// AttenuationParams are the tunable coefficients of the intensity prediction
// model:
//
//	MMI = Intercept + MagnitudeCoeff*M - DistanceCoeff*log10(d + DistanceOffsetKm)
//
// Intensity decreases monotonically with distance and increases with
// magnitude for any positive coefficients. The exact values are business
// tuning, injected via configuration, never hard-coded by callers.
type AttenuationParams struct {
	Intercept        float64
	MagnitudeCoeff   float64
	DistanceCoeff    float64
	DistanceOffsetKm float64
}

// EstimateIntensity predicts the MMI at distanceKm from an event of the given
// magnitude, rounded half-up and clamped to [1,10].
func (a AttenuationParams) EstimateIntensity(magnitude, distanceKm float64) int {
	raw := a.Intercept + a.MagnitudeCoeff*magnitude - a.DistanceCoeff*math.Log10(distanceKm+a.DistanceOffsetKm)
	mmi := int(math.Floor(raw + 0.5))
	if mmi < 1 {
		return 1
	}
	if mmi > 10 {
		return 10
	}
	return mmi
}

// RadiusKm inverts the model: the distance at which shaking attenuates to the
// given intensity level. Returns a non-positive value when the level is never
// reached (degenerate geometry, dropped by the caller). Strictly decreasing
// in level and increasing in magnitude.
func (a AttenuationParams) RadiusKm(magnitude float64, level int) float64 {
	if a.DistanceCoeff == 0 {
		return 0
	}
	exp := (a.Intercept + a.MagnitudeCoeff*magnitude - float64(level)) / a.DistanceCoeff
	return math.Pow(10, exp) - a.DistanceOffsetKm
}

package domain

// Reconcile merges the alert-derived record with an optional authoritative
// catalog origin. Overridden fields replace the alert's wholesale, with no
// averaging, because downstream distance and contour work must use the best
// available location, while the original dialect tag is preserved for audit.
//
// A nil override returns the alert unchanged with Authoritative=false. An
// override naming a different event is a KindIncompatibleOverride error.
func Reconcile(alert EventRecord, override *OriginOverride) (EventRecord, error) {
	if override == nil {
		out := alert
		out.Authoritative = false
		return out, nil
	}
	if override.EventID != alert.ID {
		return EventRecord{}, Errorf(KindIncompatibleOverride,
			"override is for event %q, alert is event %q", override.EventID, alert.ID)
	}

	out := alert
	out.Lat = override.Lat
	out.Lon = override.Lon
	out.DepthKm = override.DepthKm
	out.Magnitude = override.Magnitude
	if !override.OriginTime.IsZero() {
		out.OriginTime = override.OriginTime
	}
	out.Authoritative = true

	if err := validateEventRecord(out); err != nil {
		return EventRecord{}, err
	}
	return out, nil
}

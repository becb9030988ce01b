package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/quakewatch/alert-summary/internal/domain"
)

// Text renders a plain-language summary suitable for logs and the CLI. The
// wording mirrors public post-event bulletins: magnitude and location first,
// then per-city shaking and warning time.
func Text(report domain.ReportModel) string {
	var b strings.Builder
	e := report.Event

	fmt.Fprintf(&b, "Event %s: M%.1f at %.4f, %.4f, depth %.1f km\n",
		e.ID, e.Magnitude, e.Lat, e.Lon, e.DepthKm)
	fmt.Fprintf(&b, "Origin time: %s", e.OriginTime.UTC().Format(time.RFC3339))
	if e.Authoritative {
		b.WriteString(" (catalog origin)")
	} else {
		b.WriteString(" (real-time estimate)")
	}
	b.WriteByte('\n')

	if e.MagnitudeUncertainty != nil {
		fmt.Fprintf(&b, "Magnitude uncertainty: ±%.1f\n", *e.MagnitudeUncertainty)
	}
	if e.NumStations != nil {
		fmt.Fprintf(&b, "Reporting stations: %d\n", *e.NumStations)
	}
	if report.LocationError != nil {
		fmt.Fprintf(&b, "Initial location was off by %.1f km to the %s\n",
			report.LocationError.DistanceKm, report.LocationError.CompassDirection)
	}

	if len(report.Cities) == 0 {
		b.WriteString("No population centers within the affected radius.\n")
	} else {
		b.WriteString("Affected cities:\n")
		for _, c := range report.Cities {
			fmt.Fprintf(&b, "  %s: %.1f km %s of the epicenter, MMI %d, ~%.0fs warning\n",
				c.Name, c.DistanceKm, c.CompassDirection, c.Intensity, c.WarningSeconds)
		}
	}

	if len(report.Contours) > 0 {
		levels := make([]string, 0, len(report.Contours))
		for _, c := range report.Contours {
			levels = append(levels, fmt.Sprintf("%d", c.Level))
		}
		fmt.Fprintf(&b, "Intensity contours (MMI): %s\n", strings.Join(levels, ", "))
	}
	return b.String()
}

// Package engine runs the end-to-end summarization of one seismic alert:
// parse, reconcile against an optional catalog origin, then derive affected
// cities and intensity contours into an immutable report.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quakewatch/alert-summary/internal/domain"
	"github.com/quakewatch/alert-summary/internal/geomath"
	"github.com/quakewatch/alert-summary/internal/observability"
)

// Engine summarizes raw alert payloads against a fixed city roster. Safe for
// concurrent use; the roster and options never change after construction.
type Engine struct {
	roster    []domain.CityEntry
	proximity domain.ProximityOptions
	contours  domain.ContourOptions
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New builds an Engine. The roster must already be loaded and validated.
func New(roster []domain.CityEntry, prox domain.ProximityOptions, cont domain.ContourOptions, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		roster:    roster,
		proximity: prox,
		contours:  cont,
		logger:    logger,
		metrics:   metrics,
	}
}

// RunInput is one summarization request. Override, when set, takes precedence
// over any preferred origin embedded in the alert payload itself.
type RunInput struct {
	Alert    []byte
	Format   domain.Format
	Override *domain.OriginOverride
}

// Summarize turns one raw alert into a report. All failures carry a
// domain error kind so callers can distinguish malformed input from
// incompatible overrides or degenerate geometry.
func (e *Engine) Summarize(ctx context.Context, in RunInput) (domain.ReportModel, error) {
	start := time.Now()

	event, embedded, err := domain.Parse(in.Alert, in.Format)
	if err != nil {
		e.fail(err)
		return domain.ReportModel{}, err
	}
	e.metrics.ParsedAlerts.WithLabelValues(event.Format.String()).Inc()

	rawEpicenter := event.Epicenter()

	override := in.Override
	if override == nil {
		override = embedded
	}
	event, err = domain.Reconcile(event, override)
	if err != nil {
		e.fail(err)
		return domain.ReportModel{}, err
	}

	var locErr *domain.LocationError
	if event.Authoritative {
		locErr = locationError(rawEpicenter, event.Epicenter())
	}

	gm, err := domain.ParseGroundMotion(in.Alert, event.Format)
	if err != nil {
		e.fail(err)
		return domain.ReportModel{}, err
	}

	// Cities and contours derive independently from the reconciled event.
	var (
		wg       sync.WaitGroup
		cities   []domain.AffectedCity
		contours []domain.IntensityContour
		cityErr  error
		contErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cities, cityErr = domain.NearestCities(event, e.roster, e.proximity)
	}()
	go func() {
		defer wg.Done()
		contours, contErr = domain.BuildContours(event, gm, e.contours)
	}()
	wg.Wait()

	if cityErr != nil {
		e.fail(cityErr)
		return domain.ReportModel{}, cityErr
	}
	if contErr != nil {
		e.fail(contErr)
		return domain.ReportModel{}, contErr
	}
	if err := ctx.Err(); err != nil {
		return domain.ReportModel{}, err
	}

	report := domain.NewReportModel(event, cities, contours, locErr)

	e.metrics.CitiesMatched.Observe(float64(len(cities)))
	e.metrics.ContourLevels.Observe(float64(len(contours)))
	e.metrics.RunDuration.Observe(time.Since(start).Seconds())

	e.logger.Info("alert summarized",
		"event_id", event.ID,
		"magnitude", event.Magnitude,
		"authoritative", event.Authoritative,
		"cities", len(cities),
		"contour_levels", len(contours),
	)
	return report, nil
}

func (e *Engine) fail(err error) {
	kind := domain.KindOf(err)
	e.metrics.RunFailures.WithLabelValues(kind.String()).Inc()
	e.logger.Error("summarization failed", "kind", kind.String(), "error", err)
}

// locationError measures how far and in which direction the catalog origin
// moved the epicenter relative to the raw alert.
func locationError(raw, authoritative geomath.Point) *domain.LocationError {
	dist, err := geomath.DistanceKm(raw, authoritative)
	if err != nil {
		return nil
	}
	bearing, err := geomath.InitialBearing(raw, authoritative)
	if err != nil {
		return &domain.LocationError{DistanceKm: dist}
	}
	return &domain.LocationError{
		DistanceKm:       dist,
		CompassDirection: geomath.CompassDirection(bearing),
	}
}

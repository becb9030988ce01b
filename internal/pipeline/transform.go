package pipeline

import (
	"context"

	"github.com/quakewatch/alert-summary/internal/domain"
	"github.com/quakewatch/alert-summary/internal/engine"
)

// AlertSummarizer implements Summarizer on top of the engine. Streamed alerts
// carry no sidecar override; only an origin embedded in the payload itself is
// applied.
type AlertSummarizer struct {
	engine *engine.Engine
}

// NewSummarizer wraps an engine for use as a pipeline stage.
func NewSummarizer(eng *engine.Engine) *AlertSummarizer {
	return &AlertSummarizer{engine: eng}
}

func (s *AlertSummarizer) Summarize(ctx context.Context, raw domain.RawAlert) (domain.ReportModel, error) {
	return s.engine.Summarize(ctx, engine.RunInput{
		Alert:  raw.Value,
		Format: raw.WireFormat(),
	})
}

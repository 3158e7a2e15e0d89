package insight

import (
	"context"
	"time"

	"github.com/kbukum/huddle/llm"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/observability"
)

// Extractor asks an LLM for a meeting's insights.
type Extractor struct {
	llm     llm.Provider
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewExtractor creates an Extractor. metrics may be nil.
func NewExtractor(p llm.Provider, log *logger.Logger, metrics *observability.Metrics) *Extractor {
	return &Extractor{llm: p, log: log.WithComponent("insight.extractor"), metrics: metrics}
}

// Extract never fails. When the provider errors the fixed degraded result is
// returned.
func (e *Extractor) Extract(ctx context.Context, transcript string) Insights {
	start := time.Now()
	resp, err := e.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: SystemPrompt,
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: UserPrompt(transcript)}},
	})
	if err != nil {
		e.log.Error("Insight generation failed", logger.Fields(
			logger.FieldProvider, e.llm.Name(),
			logger.FieldError, err.Error(),
		))
		e.metrics.RecordOperation("insight", "extract", "error", time.Since(start))
		return Insights{
			Summary:     FailedSummary,
			ActionItems: NoneIdentified,
			Decisions:   NoneIdentified,
			Degraded:    true,
		}
	}

	out := Parse(resp.Content)
	status := "success"
	if out.Degraded {
		status = "degraded"
	}
	e.metrics.RecordOperation("insight", "extract", status, time.Since(start))
	e.log.Debug("Insights extracted", logger.Fields(
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
		"degraded", out.Degraded,
	))
	return out
}

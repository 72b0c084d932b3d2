package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"outbound-email-engine/internal/domain/model"
	"outbound-email-engine/internal/domain/ports/adapter"
	"outbound-email-engine/internal/infra/metrics"
)

// Compile-time check
var _ DispatchUseCase = (*dispatchUC)(nil)

// DispatchUseCase turns a cohort of contacts into generated emails,
// choosing the realtime or batch path per run based on volume.
type DispatchUseCase interface {
	// Dispatch returns one output row per contact, in input order, plus
	// the summed cost across all rows. On a realtime-mode failure the rows
	// generated before the failure are returned alongside the error; no
	// output has been committed at that point, so a rerun is safe.
	Dispatch(ctx context.Context, cohort model.ContactType, contacts []model.ContactRecord) ([]model.OutputRow, float64, error)
}

type dispatchUC struct {
	ai        adapter.CompletionAdapter
	batch     BatchRunner
	threshold int
	log       *zerolog.Logger
}

const defaultBatchThreshold = 10

// NewDispatchUseCase constructs the dispatch controller. Contact counts
// at or below threshold go through one synchronous call per contact;
// larger runs go through a single bulk job.
func NewDispatchUseCase(ai adapter.CompletionAdapter, batch BatchRunner, threshold int, logger *zerolog.Logger) DispatchUseCase {
	if threshold <= 0 {
		threshold = defaultBatchThreshold
	}
	return &dispatchUC{ai: ai, batch: batch, threshold: threshold, log: logger}
}

// prepared carries the per-contact metadata captured before dispatch so
// batch results can be zipped back positionally.
type prepared struct {
	contact model.ContactRecord
	segment model.Segment
	prompt  string
}

func (d *dispatchUC) Dispatch(ctx context.Context, cohort model.ContactType, contacts []model.ContactRecord) ([]model.OutputRow, float64, error) {
	if len(contacts) == 0 {
		return nil, 0, nil
	}

	runID := uuid.NewString()
	log := d.log.With().Str("run_id", runID).Str("cohort", string(cohort)).Logger()

	// Segmentation and prompting are pure; do all of it up front so the
	// batch path has the full prompt list and the metadata to zip against.
	preps := make([]prepared, len(contacts))
	estTokens := 0
	for i, c := range contacts {
		seg := model.SegmentOf(c)
		band := model.SizeBandOf(c)
		preps[i] = prepared{
			contact: c,
			segment: seg,
			prompt:  BuildPrompt(c, seg, band, cohort),
		}
		if n, err := d.ai.CountTokens(preps[i].prompt); err == nil {
			estTokens += n
		}
	}
	log.Debug().
		Int("contacts", len(contacts)).
		Int("est_input_tokens", estTokens).
		Float64("est_input_cost_usd", model.ResolvePricing(d.ai.ModelName()).Cost(estTokens, 0)).
		Msg("prompts prepared")

	if len(contacts) <= d.threshold {
		return d.dispatchRealtime(ctx, &log, preps)
	}
	return d.dispatchBatch(ctx, &log, preps)
}

// dispatchRealtime issues one synchronous call per contact, strictly in
// input order. The first failure aborts the remaining contacts.
func (d *dispatchUC) dispatchRealtime(ctx context.Context, log *zerolog.Logger, preps []prepared) ([]model.OutputRow, float64, error) {
	log.Info().Int("contacts", len(preps)).Msg("dispatching realtime")

	rows := make([]model.OutputRow, 0, len(preps))
	total := 0.0
	for i, p := range preps {
		draft, usage, err := d.ai.Complete(ctx, p.prompt)
		if err != nil {
			return rows, model.RoundCost(total), fmt.Errorf("contact %d (%s): %w", i, p.contact.Email, err)
		}
		res := model.NewCompletionResult(draft, d.ai.ModelName(), usage.PromptTokens, usage.CompletionTokens)
		metrics.ObserveGeneration(res.Model, "realtime", res.InputTokens, res.OutputTokens, res.CostUSD)
		rows = append(rows, model.NewOutputRow(p.contact, p.segment, res))
		total += res.CostUSD
	}
	return rows, model.RoundCost(total), nil
}

// dispatchBatch runs all prompts through one bulk job. The runner
// guarantees result[i] matches prompt i, so rows are assembled by a
// positional zip against the prepared metadata.
func (d *dispatchUC) dispatchBatch(ctx context.Context, log *zerolog.Logger, preps []prepared) ([]model.OutputRow, float64, error) {
	log.Info().Int("contacts", len(preps)).Msg("dispatching batch")

	prompts := make([]string, len(preps))
	for i, p := range preps {
		prompts[i] = p.prompt
	}

	results, err := d.batch.Run(ctx, prompts)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]model.OutputRow, len(preps))
	total := 0.0
	for i, p := range preps {
		res := model.NewCompletionResult(results[i].Draft, d.ai.ModelName(), results[i].Usage.PromptTokens, results[i].Usage.CompletionTokens)
		metrics.ObserveGeneration(res.Model, "batch", res.InputTokens, res.OutputTokens, res.CostUSD)
		rows[i] = model.NewOutputRow(p.contact, p.segment, res)
		total += res.CostUSD
	}
	return rows, model.RoundCost(total), nil
}

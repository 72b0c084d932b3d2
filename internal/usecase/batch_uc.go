package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"outbound-email-engine/internal/domain"
	"outbound-email-engine/internal/domain/model"
	"outbound-email-engine/internal/domain/ports/adapter"
	"outbound-email-engine/internal/infra/metrics"
)

// Compile-time check
var _ BatchRunner = (*batchRunner)(nil)

// BatchRunner drives one asynchronous bulk job end to end: submit all
// prompts, poll until the job reaches a terminal state, fetch the result
// file, and reconcile entries back to submission order.
type BatchRunner interface {
	// Run returns one result per prompt, in prompt order: result[i]
	// corresponds to prompts[i]. The caller can zip the slice positionally
	// against whatever metadata it captured before submitting.
	Run(ctx context.Context, prompts []string) ([]adapter.BatchResult, error)
}

type batchRunner struct {
	api          adapter.BatchAPI
	pollInterval time.Duration
	log          *zerolog.Logger
}

const defaultPollInterval = 15 * time.Second

func NewBatchRunner(api adapter.BatchAPI, pollInterval time.Duration, logger *zerolog.Logger) BatchRunner {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &batchRunner{api: api, pollInterval: pollInterval, log: logger}
}

func (r *batchRunner) Run(ctx context.Context, prompts []string) ([]adapter.BatchResult, error) {
	if len(prompts) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	reqs := make([]adapter.BatchRequest, len(prompts))
	for i, p := range prompts {
		reqs[i] = adapter.BatchRequest{Index: i, Prompt: p}
	}

	job, err := r.api.SubmitBatch(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	r.log.Info().Str("batch_id", job.ID).Int("requests", len(reqs)).Msg("batch submitted")

	job, err = r.awaitTerminal(ctx, job)
	if err != nil {
		return nil, err
	}

	if job.Status != model.BatchStatusCompleted {
		metrics.IncBatchJob(string(job.Status))
		return nil, &domain.BatchError{Status: string(job.Status), Detail: job.Error}
	}
	metrics.IncBatchJob(string(model.BatchStatusCompleted))

	results, err := r.api.FetchResults(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("fetch batch results: %w", err)
	}
	return reconcile(results, len(prompts))
}

// awaitTerminal polls on a fixed interval until the job reaches a
// terminal state or the context is cancelled. There is deliberately no
// attempt cap; the provider's completion window bounds the wait and the
// caller's context bounds us locally.
func (r *batchRunner) awaitTerminal(ctx context.Context, job *model.BatchJob) (*model.BatchJob, error) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for !job.Status.Terminal() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("awaiting batch %s: %w", job.ID, ctx.Err())
		case <-ticker.C:
		}

		polled, err := r.api.PollBatch(ctx, job.ID)
		if err != nil {
			return nil, fmt.Errorf("poll batch %s: %w", job.ID, err)
		}
		job = polled
		metrics.IncBatchPoll()
		r.log.Debug().
			Str("batch_id", job.ID).
			Str("status", string(job.Status)).
			Int("completed", job.Counts.Completed).
			Int("failed", job.Counts.Failed).
			Int("total", job.Counts.Total).
			Msg("batch poll")
	}
	return job, nil
}

// reconcile re-emits results in ascending index order. Batch responses
// carry no ordering guarantee, so this is where the positional contract
// of Run is reconstructed. A missing, duplicate, or out-of-range index
// means some contact's output would be silently misaligned; that fails
// the run instead.
func reconcile(results []adapter.BatchResult, want int) ([]adapter.BatchResult, error) {
	byIndex := make(map[int]adapter.BatchResult, len(results))
	for _, res := range results {
		if res.Index < 0 || res.Index >= want {
			return nil, fmt.Errorf("result index %d out of range [0,%d): %w", res.Index, want, domain.ErrReconciliation)
		}
		if _, dup := byIndex[res.Index]; dup {
			return nil, fmt.Errorf("duplicate result for index %d: %w", res.Index, domain.ErrReconciliation)
		}
		byIndex[res.Index] = res
	}

	ordered := make([]adapter.BatchResult, want)
	for i := 0; i < want; i++ {
		res, ok := byIndex[i]
		if !ok {
			return nil, fmt.Errorf("no result for index %d: %w", i, domain.ErrReconciliation)
		}
		ordered[i] = res
	}
	return ordered, nil
}

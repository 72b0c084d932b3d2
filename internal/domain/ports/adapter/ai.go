package adapter

import (
	"context"

	"outbound-email-engine/internal/domain/model"
)

// Usage for a single completion call as reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionAdapter is the port for synchronous, one-prompt-per-call
// email generation. Implementations make exactly one network call per
// Complete and never retry; failures propagate to the caller.
type CompletionAdapter interface {
	// Complete sends a single prompt and returns the structured draft the
	// model produced plus provider usage counts.
	Complete(ctx context.Context, prompt string) (model.EmailDraft, Usage, error)

	// CountTokens estimates prompt tokens locally (best-effort when exact
	// counting isn't available for the model).
	CountTokens(prompt string) (int, error)

	// ModelName is the model identifier requests are issued against.
	ModelName() string
}

// BatchRequest is one entry of a bulk submission. Index is the position
// of the prompt in the caller's list; the adapter encodes it into the
// wire-level correlation id and decodes it back on retrieval.
type BatchRequest struct {
	Index  int
	Prompt string
}

// BatchResult is one reconciled entry of a completed batch. Results come
// back unordered; Index links each one to its originating request.
type BatchResult struct {
	Index int
	Draft model.EmailDraft
	Usage Usage
}

// BatchAPI is the port for the provider's asynchronous bulk-completion
// path. The lifecycle (submit, poll, fetch) is driven by the batch
// runner; the adapter only translates between domain and wire formats.
type BatchAPI interface {
	// SubmitBatch assembles the request file, uploads it, and creates the
	// bulk job. Returns the job in its initial (non-terminal) state.
	SubmitBatch(ctx context.Context, reqs []BatchRequest) (*model.BatchJob, error)

	// PollBatch fetches the current status and progress counts of a job.
	PollBatch(ctx context.Context, jobID string) (*model.BatchJob, error)

	// FetchResults downloads and parses the result file of a completed
	// job. The returned slice is in provider order, not request order.
	FetchResults(ctx context.Context, job *model.BatchJob) ([]BatchResult, error)
}

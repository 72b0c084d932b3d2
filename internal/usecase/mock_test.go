//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"outbound-email-engine/internal/domain/model"
	"outbound-email-engine/internal/domain/ports/adapter"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- Mock CompletionAdapter ----

type MockCompletion struct {
	mu sync.Mutex

	// configurable behavior
	CompleteFunc    func(ctx context.Context, prompt string) (model.EmailDraft, adapter.Usage, error)
	CountTokensFunc func(prompt string) (int, error)
	Model           string

	// tracing of invocations
	Calls struct {
		Complete int
		Prompts  []string
	}
}

var _ adapter.CompletionAdapter = (*MockCompletion)(nil)

func NewMockCompletion() *MockCompletion {
	return &MockCompletion{Model: "gpt-4.1-mini"}
}

func (m *MockCompletion) Complete(ctx context.Context, prompt string) (model.EmailDraft, adapter.Usage, error) {
	m.mu.Lock()
	m.Calls.Complete++
	n := m.Calls.Complete
	m.Calls.Prompts = append(m.Calls.Prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return model.EmailDraft{
		Subject:  fmt.Sprintf("subject %d", n),
		Greeting: "Hi,",
		Body:     fmt.Sprintf("body %d", n),
	}, adapter.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}, nil
}

func (m *MockCompletion) CountTokens(prompt string) (int, error) {
	if m.CountTokensFunc != nil {
		return m.CountTokensFunc(prompt)
	}
	return len(prompt) / 4, nil
}

func (m *MockCompletion) ModelName() string { return m.Model }

// ---- Mock BatchAPI ----

type MockBatchAPI struct {
	mu sync.Mutex

	// configurable behavior
	SubmitFunc func(ctx context.Context, reqs []adapter.BatchRequest) (*model.BatchJob, error)
	PollFunc   func(ctx context.Context, jobID string) (*model.BatchJob, error)
	FetchFunc  func(ctx context.Context, job *model.BatchJob) ([]adapter.BatchResult, error)

	// PollStatuses, when set, is consumed one status per poll; the last
	// element repeats once exhausted.
	PollStatuses []model.BatchStatus

	// tracing of invocations
	Calls struct {
		Submit    int
		Poll      int
		Fetch     int
		Submitted []adapter.BatchRequest
	}
}

var _ adapter.BatchAPI = (*MockBatchAPI)(nil)

func NewMockBatchAPI() *MockBatchAPI {
	return &MockBatchAPI{PollStatuses: []model.BatchStatus{model.BatchStatusCompleted}}
}

func (m *MockBatchAPI) SubmitBatch(ctx context.Context, reqs []adapter.BatchRequest) (*model.BatchJob, error) {
	m.mu.Lock()
	m.Calls.Submit++
	m.Calls.Submitted = append([]adapter.BatchRequest(nil), reqs...)
	m.mu.Unlock()

	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, reqs)
	}
	return &model.BatchJob{ID: "batch_test", Status: model.BatchStatusPending}, nil
}

func (m *MockBatchAPI) PollBatch(ctx context.Context, jobID string) (*model.BatchJob, error) {
	m.mu.Lock()
	m.Calls.Poll++
	i := m.Calls.Poll - 1
	statuses := m.PollStatuses
	m.mu.Unlock()

	if m.PollFunc != nil {
		return m.PollFunc(ctx, jobID)
	}
	if i >= len(statuses) {
		i = len(statuses) - 1
	}
	return &model.BatchJob{ID: jobID, Status: statuses[i]}, nil
}

func (m *MockBatchAPI) FetchResults(ctx context.Context, job *model.BatchJob) ([]adapter.BatchResult, error) {
	m.mu.Lock()
	m.Calls.Fetch++
	reqs := m.Calls.Submitted
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, job)
	}
	// default: echo one successful result per submitted request, in order
	out := make([]adapter.BatchResult, len(reqs))
	for i, r := range reqs {
		out[i] = adapter.BatchResult{
			Index: r.Index,
			Draft: model.EmailDraft{Subject: fmt.Sprintf("subject %d", r.Index), Greeting: "Hi,", Body: fmt.Sprintf("body %d", r.Index)},
			Usage: adapter.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		}
	}
	return out, nil
}

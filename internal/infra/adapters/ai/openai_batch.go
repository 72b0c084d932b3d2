package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"outbound-email-engine/internal/config"
	"outbound-email-engine/internal/domain"
	"outbound-email-engine/internal/domain/model"
	"outbound-email-engine/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.BatchAPI = (*OpenAIBatchAPI)(nil)

// correlationPrefix tags each batch entry with its input position. The
// formatted string only exists on the wire; everywhere else the position
// travels as a typed index.
const correlationPrefix = "email-"

// OpenAIBatchAPI implements adapter.BatchAPI against the Files and
// Batches endpoints: a JSONL request file is uploaded, a batch job is
// created referencing it, and the result file is downloaded once the job
// completes.
type OpenAIBatchAPI struct {
	apiKey           string
	base             string
	model            string
	temperature      float64
	topP             float64
	completionWindow string
	client           *http.Client
}

func NewOpenAIBatchAPI(cfg *config.AIConfig, completionWindow string) (*OpenAIBatchAPI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key empty: %w", domain.ErrConfiguration)
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if completionWindow == "" {
		completionWindow = "24h"
	}
	return &OpenAIBatchAPI{
		apiKey:           cfg.APIKey,
		base:             strings.TrimRight(base, "/"),
		model:            cfg.Model,
		temperature:      cfg.Temperature,
		topP:             cfg.TopP,
		completionWindow: completionWindow,
		// No client timeout: file downloads for large batches can be slow;
		// cancellation comes from the request context.
		client: &http.Client{},
	}, nil
}

// SubmitBatch assembles the JSONL request file in memory, uploads it with
// purpose=batch, and creates the job.
func (b *OpenAIBatchAPI) SubmitBatch(ctx context.Context, reqs []adapter.BatchRequest) (*model.BatchJob, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	var file bytes.Buffer
	enc := json.NewEncoder(&file)
	for _, r := range reqs {
		line := struct {
			CustomID string   `json:"custom_id"`
			Method   string   `json:"method"`
			URL      string   `json:"url"`
			Body     chatBody `json:"body"`
		}{
			CustomID: correlationPrefix + strconv.Itoa(r.Index),
			Method:   http.MethodPost,
			URL:      "/v1/chat/completions",
			Body:     chatRequestBody(b.model, r.Prompt, b.temperature, b.topP),
		}
		if err := enc.Encode(line); err != nil {
			return nil, fmt.Errorf("encode batch request %d: %w", r.Index, err)
		}
	}

	fileID, err := b.uploadFile(ctx, "batch_requests.jsonl", file.Bytes())
	if err != nil {
		return nil, err
	}

	createBody, _ := json.Marshal(struct {
		InputFileID      string `json:"input_file_id"`
		Endpoint         string `json:"endpoint"`
		CompletionWindow string `json:"completion_window"`
	}{fileID, "/v1/chat/completions", b.completionWindow})

	var payload batchPayload
	if err := b.doJSON(ctx, http.MethodPost, "/batches", bytes.NewReader(createBody), &payload); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return payload.toJob(), nil
}

// PollBatch issues one status query.
func (b *OpenAIBatchAPI) PollBatch(ctx context.Context, jobID string) (*model.BatchJob, error) {
	var payload batchPayload
	if err := b.doJSON(ctx, http.MethodGet, "/batches/"+jobID, nil, &payload); err != nil {
		return nil, fmt.Errorf("get batch %s: %w", jobID, err)
	}
	return payload.toJob(), nil
}

// FetchResults downloads the output file of a completed job and parses
// every entry. Entries come back in provider order; the caller
// reconciles them by index. A per-entry provider error or a body that
// fails the email schema loses the whole batch.
func (b *OpenAIBatchAPI) FetchResults(ctx context.Context, job *model.BatchJob) ([]adapter.BatchResult, error) {
	if job.OutputFileID == "" {
		return nil, fmt.Errorf("batch %s has no output file: %w", job.ID, domain.ErrBatchFailed)
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, b.base+"/files/"+job.OutputFileID+"/content", nil)
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download results: %v: %w", err, domain.ErrProvider)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("download results http %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(detail)), domain.ErrProvider)
	}

	var out []adapter.BatchResult
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		res, err := parseResultLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read result file: %v: %w", err, domain.ErrProvider)
	}
	return out, nil
}

type batchPayload struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	InputFileID   string `json:"input_file_id"`
	OutputFileID  string `json:"output_file_id"`
	ErrorFileID   string `json:"error_file_id"`
	RequestCounts struct {
		Completed int `json:"completed"`
		Failed    int `json:"failed"`
		Total     int `json:"total"`
	} `json:"request_counts"`
	Errors struct {
		Data []struct {
			Message string `json:"message"`
		} `json:"data"`
	} `json:"errors"`
}

func (p batchPayload) toJob() *model.BatchJob {
	job := &model.BatchJob{
		ID:           p.ID,
		Status:       mapBatchStatus(p.Status),
		InputFileID:  p.InputFileID,
		OutputFileID: p.OutputFileID,
		ErrorFileID:  p.ErrorFileID,
		Counts: model.BatchRequestCounts{
			Completed: p.RequestCounts.Completed,
			Failed:    p.RequestCounts.Failed,
			Total:     p.RequestCounts.Total,
		},
	}
	msgs := make([]string, 0, len(p.Errors.Data))
	for _, e := range p.Errors.Data {
		if e.Message != "" {
			msgs = append(msgs, e.Message)
		}
	}
	job.Error = strings.Join(msgs, "; ")
	return job
}

// mapBatchStatus folds provider-specific intermediate states onto the
// domain's closed status enum.
func mapBatchStatus(s string) model.BatchStatus {
	switch s {
	case "validating":
		return model.BatchStatusPending
	case "in_progress", "finalizing", "cancelling":
		return model.BatchStatusRunning
	case "completed":
		return model.BatchStatusCompleted
	case "failed":
		return model.BatchStatusFailed
	case "expired":
		return model.BatchStatusExpired
	case "cancelled":
		return model.BatchStatusCancelled
	default:
		return model.BatchStatusRunning
	}
}

func parseResultLine(line []byte) (adapter.BatchResult, error) {
	var zero adapter.BatchResult
	var entry struct {
		CustomID string `json:"custom_id"`
		Response *struct {
			StatusCode int `json:"status_code"`
			Body       struct {
				Choices []struct {
					Message struct {
						Content string `json:"content"`
					} `json:"message"`
				} `json:"choices"`
				Usage usagePayload `json:"usage"`
			} `json:"body"`
		} `json:"response"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(line, &entry); err != nil {
		return zero, fmt.Errorf("parse result entry: %v: %w", err, domain.ErrProvider)
	}

	idx, err := parseCorrelationID(entry.CustomID)
	if err != nil {
		return zero, err
	}

	if entry.Error != nil {
		return zero, &domain.BatchError{
			Status: string(model.BatchStatusCompleted),
			Detail: fmt.Sprintf("entry %d failed: %s (%s)", idx, entry.Error.Message, entry.Error.Code),
		}
	}
	if entry.Response == nil || entry.Response.StatusCode >= 300 {
		code := 0
		if entry.Response != nil {
			code = entry.Response.StatusCode
		}
		return zero, &domain.BatchError{
			Status: string(model.BatchStatusCompleted),
			Detail: fmt.Sprintf("entry %d returned http %d", idx, code),
		}
	}
	if len(entry.Response.Body.Choices) == 0 || entry.Response.Body.Choices[0].Message.Content == "" {
		return zero, &domain.BatchError{
			Status: string(model.BatchStatusCompleted),
			Detail: fmt.Sprintf("entry %d has no choice content", idx),
		}
	}

	draft, err := decodeDraft(entry.Response.Body.Choices[0].Message.Content)
	if err != nil {
		return zero, &domain.BatchError{
			Status: string(model.BatchStatusCompleted),
			Detail: fmt.Sprintf("entry %d: %v", idx, err),
		}
	}
	return adapter.BatchResult{Index: idx, Draft: draft, Usage: entry.Response.Body.Usage.toUsage()}, nil
}

// parseCorrelationID recovers the typed index from the wire-level
// correlation id. An id that does not parse back means the result cannot
// be matched to a contact, which fails the run rather than dropping it.
func parseCorrelationID(customID string) (int, error) {
	suffix, ok := strings.CutPrefix(customID, correlationPrefix)
	if !ok {
		return 0, fmt.Errorf("unexpected correlation id %q: %w", customID, domain.ErrReconciliation)
	}
	idx, err := strconv.Atoi(suffix)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("unparseable correlation id %q: %w", customID, domain.ErrReconciliation)
	}
	return idx, nil
}

// uploadFile pushes the JSONL request file via multipart form upload.
func (b *OpenAIBatchAPI) uploadFile(ctx context.Context, name string, content []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("purpose", "batch"); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, b.base+"/files", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %v: %w", err, domain.ErrProvider)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("upload file http %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(detail)), domain.ErrProvider)
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode file response: %v: %w", err, domain.ErrProvider)
	}
	if payload.ID == "" {
		return "", fmt.Errorf("file upload returned no id: %w", domain.ErrProvider)
	}
	return payload.ID, nil
}

// doJSON performs an authenticated JSON request against the API base.
func (b *OpenAIBatchAPI) doJSON(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, _ := http.NewRequestWithContext(ctx, method, b.base+path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrProvider)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("http %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(detail)), domain.ErrProvider)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, domain.ErrProvider)
	}
	return nil
}

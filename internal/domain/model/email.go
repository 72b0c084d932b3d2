package model

// EmailSignature is appended to every generated email. The model is never
// asked to produce a sign-off; keeping it fixed avoids hallucinated names.
const EmailSignature = "Best regards,\nThe Growth Team"

// EmailDraft is the structured payload the model must return: exactly
// these three fields, no extras.
type EmailDraft struct {
	Subject  string `json:"subject"`
	Greeting string `json:"greeting"`
	Body     string `json:"body"`
}

// CompletionResult is one generated email together with the usage and
// cost accounting for the call that produced it.
type CompletionResult struct {
	EmailDraft

	Signature    string
	Model        string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// NewCompletionResult assembles a result from a parsed draft and provider
// usage counts, pricing the call via the model pricing table.
func NewCompletionResult(draft EmailDraft, modelName string, inputTokens, outputTokens int) CompletionResult {
	return CompletionResult{
		EmailDraft:   draft,
		Signature:    EmailSignature,
		Model:        modelName,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD:      ResolvePricing(modelName).Cost(inputTokens, outputTokens),
	}
}

// DisplayEmail renders the full email as it would be sent.
func (r CompletionResult) DisplayEmail() string {
	return r.Greeting + "\n\n" + r.Body + "\n\n" + r.Signature
}

// OutputRow is the final persisted record for one dispatched contact.
type OutputRow struct {
	Type         ContactType
	Email        string
	Segment      Segment
	Subject      string
	Greeting     string
	Body         string
	Signature    string
	DisplayEmail string
	Model        string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// NewOutputRow binds a completion result back to the contact it was
// generated for.
func NewOutputRow(c ContactRecord, seg Segment, res CompletionResult) OutputRow {
	return OutputRow{
		Type:         c.Type,
		Email:        c.Email,
		Segment:      seg,
		Subject:      res.Subject,
		Greeting:     res.Greeting,
		Body:         res.Body,
		Signature:    res.Signature,
		DisplayEmail: res.DisplayEmail(),
		Model:        res.Model,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		TotalTokens:  res.TotalTokens,
		CostUSD:      res.CostUSD,
	}
}

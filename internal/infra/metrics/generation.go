package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		emailsGenerated,
		genTokensIn,
		genTokensOut,
		genCostUSD,
	)
}

var (
	emailsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_emails_generated_total",
			Help: "Count of generated emails per model and dispatch mode.",
		},
		[]string{"model", "mode"},
	)

	genTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_tokens_in",
			Help: "Sum of prompt (input) tokens per model and dispatch mode.",
		},
		[]string{"model", "mode"},
	)

	genTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_tokens_out",
			Help: "Sum of completion (output) tokens per model and dispatch mode.",
		},
		[]string{"model", "mode"},
	)

	genCostUSD = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_cost_usd",
			Help: "Total USD spent per model and dispatch mode.",
		},
		[]string{"model", "mode"},
	)
)

func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}

// ObserveGeneration records usage and cost for one generated email.
func ObserveGeneration(model, mode string, tokensIn, tokensOut int, costUSD float64) {
	lbl := []string{norm(model), norm(mode)}
	emailsGenerated.WithLabelValues(lbl...).Inc()
	genTokensIn.WithLabelValues(lbl...).Add(float64(tokensIn))
	genTokensOut.WithLabelValues(lbl...).Add(float64(tokensOut))
	genCostUSD.WithLabelValues(lbl...).Add(costUSD)
}

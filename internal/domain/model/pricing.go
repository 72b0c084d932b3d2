package model

import (
	"math"
	"sort"
	"strings"
)

// ModelPricing is the USD price per one million tokens for a model,
// split by direction.
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Standard-tier prices per 1M tokens. Closed table: unknown models fall
// back to defaultPricing so a run never fails on a pricing gap, it just
// reports the conservative default.
var modelPricing = map[string]ModelPricing{
	"gpt-4.1":      {2.00, 8.00},
	"gpt-4.1-mini": {0.40, 1.60},
	"gpt-4.1-nano": {0.10, 0.40},
	"gpt-4o":       {2.50, 10.00},
	"gpt-4o-mini":  {0.15, 0.60},
}

// defaultPricing mirrors gpt-4.1 standard tier.
var defaultPricing = ModelPricing{2.00, 8.00}

// pricingKeys holds the table keys longest-first so that a variant such
// as "gpt-4.1-mini" is matched before its base name "gpt-4.1".
var pricingKeys = func() []string {
	keys := make([]string, 0, len(modelPricing))
	for k := range modelPricing {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ResolvePricing returns the price pair for a model identifier. It is
// total: exact match first, then the longest table key contained in the
// identifier, then the default. Never fails.
func ResolvePricing(modelName string) ModelPricing {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" {
		return defaultPricing
	}
	if p, ok := modelPricing[name]; ok {
		return p
	}
	for _, key := range pricingKeys {
		if strings.Contains(name, key) {
			return modelPricing[key]
		}
	}
	return defaultPricing
}

// Cost computes the USD cost of a call, rounded to 6 decimal places so
// aggregation across rows does not accumulate floating-point drift.
func (p ModelPricing) Cost(inputTokens, outputTokens int) float64 {
	cost := float64(inputTokens)/1e6*p.InputPerMillion +
		float64(outputTokens)/1e6*p.OutputPerMillion
	return RoundCost(cost)
}

// RoundCost rounds a USD amount to 6 decimal places.
func RoundCost(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Package engine is the one-call facade over the pricing pipeline: raw
// payload in, canonical tree plus computed totals out. It is pure — the
// input is treated as read-only and every call produces a fresh tree — so
// concurrent evaluations need no locking.
package engine

import (
	"encoding/json"

	"github.com/noah-isme/backend-orca/internal/aggregate"
	"github.com/noah-isme/backend-orca/internal/budget"
	"github.com/noah-isme/backend-orca/internal/normalize"
)

// Result bundles everything collaborators consume: the canonical tree for
// breakdown rendering, the annotated per-category breakdown, the totals, and
// any normalization warnings.
type Result struct {
	Budget    budget.Budget                 `json:"budget"`
	Breakdown []aggregate.CampaignBreakdown `json:"breakdown"`
	Totals    budget.Totals                 `json:"totals"`
	Warnings  []normalize.Warning           `json:"warnings"`
}

// Evaluate normalizes the payload and computes totals. It never fails;
// malformed input degrades to defaults reported through Result.Warnings.
func Evaluate(payload any, opts normalize.Options) Result {
	b, warnings := normalize.Normalize(payload, opts)
	return Result{
		Budget:    b,
		Breakdown: aggregate.Breakdown(b),
		Totals:    aggregate.Compute(b),
		Warnings:  warnings,
	}
}

// EvaluateJSON decodes a stored payload and evaluates it. Undecodable bytes
// degrade to the empty-budget fallback, keeping the never-fails contract.
func EvaluateJSON(raw []byte, opts normalize.Options) Result {
	var payload any
	if len(raw) > 0 {
		// Decode errors leave payload nil, which Normalize absorbs.
		_ = json.Unmarshal(raw, &payload)
	}
	return Evaluate(payload, opts)
}

// EvaluateBudget computes totals for an already-canonical tree.
func EvaluateBudget(b budget.Budget) budget.Totals {
	return aggregate.Compute(b)
}

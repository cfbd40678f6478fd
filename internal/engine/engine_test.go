package engine

import (
	"encoding/json"
	"testing"

	"github.com/noah-isme/backend-orca/internal/money"
	"github.com/noah-isme/backend-orca/internal/normalize"
)

const samplePayload = `{
	"combinationMode": "sum",
	"honorariumPercent": 10,
	"campaigns": [
		{"id": "c1", "name": "TV", "categories": [
			{"id": "k1", "name": "Film Production", "offers": [
				{"id": "o1", "grossValue": 1000},
				{"id": "o2", "grossValue": 800, "discount": 100}
			]}
		]},
		{"id": "c2", "name": "Radio", "categories": [
			{"id": "k2", "name": "Audio", "offers": [{"id": "o3", "grossValue": 2000}]}
		]}
	]
}`

func TestEvaluateEndToEnd(t *testing.T) {
	res := EvaluateJSON([]byte(samplePayload), normalize.Options{})
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", res.Warnings)
	}
	if !res.Totals.CombinedSubtotal.Equal(money.FromInt(2700)) {
		t.Fatalf("combined = %s, want 2700", res.Totals.CombinedSubtotal)
	}
	if !res.Totals.GrandTotal.Equal(money.FromInt(2970)) {
		t.Fatalf("grand total = %s, want 2970", res.Totals.GrandTotal)
	}
	if len(res.Breakdown) != 2 {
		t.Fatalf("expected 2 campaign breakdowns, got %d", len(res.Breakdown))
	}
	winner := res.Breakdown[0].Categories[0].Winner
	if winner == nil || winner.OfferID != "o2" {
		t.Fatalf("unexpected winner: %+v", winner)
	}
}

// Normalizing an already-canonical tree must not change what it computes.
func TestEvaluateIsIdempotent(t *testing.T) {
	first := EvaluateJSON([]byte(samplePayload), normalize.Options{})

	reencoded, err := json.Marshal(first.Budget)
	if err != nil {
		t.Fatalf("marshal canonical tree: %v", err)
	}
	second := EvaluateJSON(reencoded, normalize.Options{})

	if len(second.Warnings) != 0 {
		t.Fatalf("re-normalization produced warnings: %+v", second.Warnings)
	}
	if !first.Totals.GrandTotal.Equal(second.Totals.GrandTotal) {
		t.Fatalf("totals diverged: %s vs %s", first.Totals.GrandTotal, second.Totals.GrandTotal)
	}
	if !first.Totals.CombinedSubtotal.Equal(second.Totals.CombinedSubtotal) {
		t.Fatalf("subtotals diverged: %s vs %s", first.Totals.CombinedSubtotal, second.Totals.CombinedSubtotal)
	}
	firstTree, _ := json.Marshal(first.Budget)
	secondTree, _ := json.Marshal(second.Budget)
	if string(firstTree) != string(secondTree) {
		t.Fatal("canonical tree changed across normalizations")
	}
}

func TestEvaluateNeverFails(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(`{`), []byte(`[1,2,3]`), []byte(`"text"`)} {
		res := EvaluateJSON(raw, normalize.Options{})
		if len(res.Budget.Campaigns) == 0 {
			t.Fatalf("expected fallback campaign for %q", raw)
		}
		if !res.Totals.GrandTotal.IsZero() {
			t.Fatalf("expected zero total for %q, got %s", raw, res.Totals.GrandTotal)
		}
	}
}

func TestEvaluateSurfacesWarnings(t *testing.T) {
	res := EvaluateJSON([]byte(`{"campaigns":[{"categories":[{"offers":[{"grossValue":"??"}]}]}]}`), normalize.Options{})
	if len(res.Warnings) == 0 {
		t.Fatal("expected coercion warning")
	}
}

package selection

import (
	"testing"

	"github.com/noah-isme/backend-orca/internal/budget"
	"github.com/noah-isme/backend-orca/internal/money"
)

func flatCategory(offers ...budget.Offer) budget.Category {
	return budget.Category{
		ID:          "cat",
		Name:        "Film Production",
		Visible:     true,
		PricingMode: budget.PricingFlat,
		Offers:      offers,
	}
}

func TestCheapestOfferWins(t *testing.T) {
	cat := flatCategory(
		budget.Offer{ID: "a", GrossValue: money.FromInt(1000)},
		budget.Offer{ID: "b", GrossValue: money.FromInt(800), Discount: money.FromInt(100)},
	)
	w, ok := Resolve(cat)
	if !ok {
		t.Fatal("expected a winner")
	}
	if w.OfferID != "b" {
		t.Fatalf("expected offer b to win, got %s", w.OfferID)
	}
	if !w.Net.Equal(money.FromInt(700)) {
		t.Fatalf("expected net 700, got %s", w.Net)
	}
}

func TestOptionsCompeteAcrossOffers(t *testing.T) {
	cat := flatCategory(
		budget.Offer{ID: "a", GrossValue: money.FromInt(1000)},
		budget.Offer{ID: "b", HasOptions: true, GrossValue: money.FromInt(800), Discount: money.FromInt(100), Options: []budget.Option{
			{ID: "b1", GrossValue: money.FromInt(900)},
			{ID: "b2", GrossValue: money.FromInt(650), Discount: money.FromInt(50)},
		}},
	)
	w, ok := Resolve(cat)
	if !ok {
		t.Fatal("expected a winner")
	}
	if w.OfferID != "b" || w.OptionID != "b2" {
		t.Fatalf("expected offer b / option b2, got %s/%s", w.OfferID, w.OptionID)
	}
	if !w.Net.Equal(money.FromInt(600)) {
		t.Fatalf("expected net 600, got %s", w.Net)
	}
}

func TestOfferWithOptionsIgnoresOwnPrice(t *testing.T) {
	// Offer b's own gross of 1 must not compete once it carries options.
	cat := flatCategory(
		budget.Offer{ID: "a", GrossValue: money.FromInt(500)},
		budget.Offer{ID: "b", HasOptions: true, GrossValue: money.FromInt(1), Options: []budget.Option{
			{ID: "b1", GrossValue: money.FromInt(900)},
		}},
	)
	w, _ := Resolve(cat)
	if w.OfferID != "a" {
		t.Fatalf("expected offer a to win, got %s", w.OfferID)
	}
}

func TestHumanSelectionOverridesPrice(t *testing.T) {
	cat := flatCategory(
		budget.Offer{ID: "cheap", GrossValue: money.FromInt(100)},
		budget.Offer{ID: "chosen", GrossValue: money.FromInt(900), Selected: true},
	)
	w, _ := Resolve(cat)
	if w.OfferID != "chosen" {
		t.Fatalf("expected selected offer to win, got %s", w.OfferID)
	}
	if !w.Net.Equal(money.FromInt(900)) {
		t.Fatalf("expected net 900, got %s", w.Net)
	}
}

func TestSelectedOfferPrefersSelectedOption(t *testing.T) {
	cat := flatCategory(
		budget.Offer{ID: "chosen", Selected: true, HasOptions: true, Options: []budget.Option{
			{ID: "o1", GrossValue: money.FromInt(300)},
			{ID: "o2", GrossValue: money.FromInt(500), Selected: true},
		}},
	)
	w, _ := Resolve(cat)
	if w.OptionID != "o2" {
		t.Fatalf("expected selected option o2, got %s", w.OptionID)
	}
	if !w.Net.Equal(money.FromInt(500)) {
		t.Fatalf("expected net 500, got %s", w.Net)
	}
}

func TestSelectedOfferFallsBackToCheapestOption(t *testing.T) {
	cat := flatCategory(
		budget.Offer{ID: "chosen", Selected: true, HasOptions: true, Options: []budget.Option{
			{ID: "o1", GrossValue: money.FromInt(300)},
			{ID: "o2", GrossValue: money.FromInt(250)},
		}},
	)
	w, _ := Resolve(cat)
	if w.OptionID != "o2" {
		t.Fatalf("expected cheapest option o2, got %s", w.OptionID)
	}
}

func TestTieKeepsEarliestOffer(t *testing.T) {
	cat := flatCategory(
		budget.Offer{ID: "first", GrossValue: money.FromInt(500)},
		budget.Offer{ID: "second", GrossValue: money.FromInt(500)},
	)
	w, _ := Resolve(cat)
	if w.OfferID != "first" {
		t.Fatalf("expected first offer on tie, got %s", w.OfferID)
	}
}

func TestEmptyCategoryHasNoWinner(t *testing.T) {
	if _, ok := Resolve(flatCategory()); ok {
		t.Fatal("expected no winner for empty category")
	}
	itemized := budget.Category{PricingMode: budget.PricingItemized, Visible: true}
	if _, ok := Resolve(itemized); ok {
		t.Fatal("expected no winner for itemized category")
	}
}

func TestRemovingWinnerFallsToNextCheapest(t *testing.T) {
	offers := []budget.Offer{
		{ID: "a", GrossValue: money.FromInt(700)},
		{ID: "b", GrossValue: money.FromInt(400)},
		{ID: "c", GrossValue: money.FromInt(550)},
	}
	w, _ := Resolve(flatCategory(offers...))
	if w.OfferID != "b" {
		t.Fatalf("expected b, got %s", w.OfferID)
	}
	w, _ = Resolve(flatCategory(offers[0], offers[2]))
	if w.OfferID != "c" || !w.Net.Equal(money.FromInt(550)) {
		t.Fatalf("expected c at 550, got %s at %s", w.OfferID, w.Net)
	}
}

// Package selection picks the winning offer (and winning nested option) for
// flat-mode categories.
package selection

import (
	"github.com/noah-isme/backend-orca/internal/budget"
	"github.com/noah-isme/backend-orca/internal/money"
)

// Winner identifies the offer, and optionally the option, that prices a flat
// category. OptionID is empty when the offer's own price won.
type Winner struct {
	OfferID  string       `json:"offerId"`
	OptionID string       `json:"optionId,omitempty"`
	Net      money.Amount `json:"net"`
}

// Resolve determines the winning offer/option pair for a flat category.
// A human-selected offer always wins; otherwise the globally cheapest
// candidate does, comparing every offer's own net value and every nested
// option's net value as flat competitors. Ties keep the earliest candidate
// in list order. It reports false for empty or itemized categories.
func Resolve(cat budget.Category) (Winner, bool) {
	if cat.PricingMode != budget.PricingFlat || len(cat.Offers) == 0 {
		return Winner{}, false
	}
	for _, offer := range cat.Offers {
		if offer.Selected {
			return resolveSelected(offer), true
		}
	}

	var best Winner
	found := false
	consider := func(w Winner) {
		if !found || w.Net.LessThan(best.Net) {
			best = w
			found = true
		}
	}
	for _, offer := range cat.Offers {
		if offer.HasOptions && len(offer.Options) > 0 {
			for _, opt := range offer.Options {
				consider(Winner{OfferID: offer.ID, OptionID: opt.ID, Net: opt.Net()})
			}
			continue
		}
		consider(Winner{OfferID: offer.ID, Net: offer.Net()})
	}
	return best, found
}

// resolveSelected prices a human-selected offer: the selected option wins if
// one is marked, otherwise its cheapest option, otherwise its own net.
func resolveSelected(offer budget.Offer) Winner {
	if offer.HasOptions && len(offer.Options) > 0 {
		for _, opt := range offer.Options {
			if opt.Selected {
				return Winner{OfferID: offer.ID, OptionID: opt.ID, Net: opt.Net()}
			}
		}
		best := offer.Options[0]
		for _, opt := range offer.Options[1:] {
			if opt.Net().LessThan(best.Net()) {
				best = opt
			}
		}
		return Winner{OfferID: offer.ID, OptionID: best.ID, Net: best.Net()}
	}
	return Winner{OfferID: offer.ID, Net: offer.Net()}
}

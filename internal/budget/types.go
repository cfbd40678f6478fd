// Package budget defines the canonical tree that the normalizer produces and
// the pricing engine consumes, plus the computed totals handed to rendering
// and export collaborators.
package budget

import "github.com/noah-isme/backend-orca/internal/money"

// CombinationMode controls how multiple campaign subtotals combine into the
// budget total.
type CombinationMode string

const (
	// ModeIndividual applies the honorarium per campaign.
	ModeIndividual CombinationMode = "individual"
	// ModeSum applies the honorarium once to the consolidated subtotal.
	ModeSum CombinationMode = "sum"
	// ModePackage applies the package discount, then the honorarium, to the
	// consolidated subtotal.
	ModePackage CombinationMode = "package"
)

// PricingMode determines how a category prices its contents.
type PricingMode string

const (
	// PricingFlat picks the cheapest eligible offer.
	PricingFlat PricingMode = "flat"
	// PricingItemized sums every line item.
	PricingItemized PricingMode = "itemized"
)

// OfferKind tags which production track an offer belongs to. It only drives
// grouping during normalization, never pricing.
type OfferKind string

const (
	KindFilm    OfferKind = "film"
	KindAudio   OfferKind = "audio"
	KindGeneric OfferKind = "generic"
)

// Option is a priced sub-alternative nested inside an offer.
type Option struct {
	ID         string       `json:"id"`
	Label      string       `json:"label,omitempty"`
	GrossValue money.Amount `json:"grossValue"`
	Discount   money.Amount `json:"discount"`
	Selected   bool         `json:"selected,omitempty"`
}

// Net is the option's net value.
func (o Option) Net() money.Amount {
	return money.Net(o.GrossValue, o.Discount)
}

// Offer is a priceable alternative within a category: a supplier quote with a
// flat price, or a carrier of nested options each priced independently.
type Offer struct {
	ID         string       `json:"id"`
	Kind       OfferKind    `json:"kind"`
	GrossValue money.Amount `json:"grossValue"`
	Discount   money.Amount `json:"discount"`
	Selected   bool         `json:"selected,omitempty"`
	HasOptions bool         `json:"hasOptions,omitempty"`
	Options    []Option     `json:"options,omitempty"`
}

// Net is the offer's effective net value. When the offer carries options its
// own gross/discount are ignored and the cheapest option prices it.
func (o Offer) Net() money.Amount {
	if o.HasOptions && len(o.Options) > 0 {
		min := o.Options[0].Net()
		for _, opt := range o.Options[1:] {
			min = money.Min(min, opt.Net())
		}
		return min
	}
	return money.Net(o.GrossValue, o.Discount)
}

// LineItem is a unit-priced line inside an itemized category.
type LineItem struct {
	ID          string       `json:"id"`
	Description string       `json:"description,omitempty"`
	Quantity    money.Amount `json:"quantity"`
	UnitPrice   money.Amount `json:"unitPrice"`
	Discount    money.Amount `json:"discount"`
}

// Net is quantity × unitPrice − discount, floored at zero.
func (li LineItem) Net() money.Amount {
	return money.LineNet(li.Quantity, li.UnitPrice, li.Discount)
}

// Category is a named cost bucket within a campaign. Flat categories carry
// offers; itemized categories carry line items.
type Category struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Visible     bool        `json:"visible"`
	PricingMode PricingMode `json:"pricingMode"`
	Offers      []Offer     `json:"offers,omitempty"`
	Items       []LineItem  `json:"items,omitempty"`
	Note        string      `json:"note,omitempty"`
}

// Campaign is one deliverable track: an ordered list of categories.
type Campaign struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// Budget is the root of the canonical tree.
type Budget struct {
	Campaigns              []Campaign      `json:"campaigns"`
	CombinationMode        CombinationMode `json:"combinationMode"`
	PackageDiscountPercent money.Amount    `json:"packageDiscountPercent"`
	HonorariumPercent      money.Amount    `json:"honorariumPercent"`
}

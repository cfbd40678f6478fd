// Package normalize maps the heterogeneous, versioned budget payloads the
// application has persisted over the years into the one canonical tree. It
// never fails: unrecognized shapes, missing fields, and unparsable numbers
// degrade to safe defaults, and every degradation is reported through the
// returned warnings list.
package normalize

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-orca/internal/budget"
	"github.com/noah-isme/backend-orca/internal/money"
)

// Warning records one spot where the payload could not be taken at face
// value and a default was substituted.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Options configures normalization. BaseCategories seeds campaigns that
// arrive without any category of their own; it is an explicit parameter so
// callers, not a package global, own the seed list.
type Options struct {
	BaseCategories []string
}

// Normalize converts any of the recognized payload shapes into a canonical
// budget tree. Shapes, in priority order: canonical campaigns[].categories[],
// flat legacy top-level categories[], quote-list legacy campaigns with
// quotes_film[]/quotes_audio[], and finally a single empty campaign.
func Normalize(payload any, opts Options) (budget.Budget, []Warning) {
	d := &decoder{opts: opts}
	b := d.budget(payload)
	if d.warnings == nil {
		d.warnings = []Warning{}
	}
	return b, d.warnings
}

type decoder struct {
	opts     Options
	warnings []Warning
}

func (d *decoder) warnf(path, format string, args ...any) {
	d.warnings = append(d.warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (d *decoder) budget(payload any) budget.Budget {
	root, ok := payload.(map[string]any)
	if !ok {
		if payload != nil {
			d.warnf("$", "unrecognized payload of type %T, using empty budget", payload)
		}
		return budget.Budget{
			Campaigns:              []budget.Campaign{d.emptyCampaign("Single Campaign")},
			CombinationMode:        budget.ModeIndividual,
			PackageDiscountPercent: money.Zero(),
			HonorariumPercent:      money.Zero(),
		}
	}

	b := budget.Budget{
		CombinationMode:        d.mode(field(root, "combinationMode", "combination_mode", "mode")),
		PackageDiscountPercent: d.percent(field(root, "packageDiscountPercent", "package_discount_percent"), "packageDiscountPercent"),
		HonorariumPercent:      d.percent(field(root, "honorariumPercent", "honorarium_percent", "honorarium"), "honorariumPercent"),
	}

	switch {
	case isList(root["campaigns"]):
		raw := root["campaigns"].([]any)
		b.Campaigns = make([]budget.Campaign, 0, len(raw))
		for i, v := range raw {
			b.Campaigns = append(b.Campaigns, d.campaign(v, fmt.Sprintf("campaigns[%d]", i), i))
		}
	case isList(root["categories"]):
		// Flat legacy: top-level categories wrapped into one campaign.
		c := budget.Campaign{ID: uuid.NewString(), Name: "Single Campaign"}
		for i, v := range root["categories"].([]any) {
			c.Categories = append(c.Categories, d.category(v, fmt.Sprintf("categories[%d]", i)))
		}
		b.Campaigns = []budget.Campaign{c}
	default:
		b.Campaigns = []budget.Campaign{d.emptyCampaign("Single Campaign")}
	}
	return b
}

func (d *decoder) emptyCampaign(name string) budget.Campaign {
	return budget.Campaign{
		ID:         uuid.NewString(),
		Name:       name,
		Categories: d.seedCategories(),
	}
}

// seedCategories materializes the configured base categories as empty flat
// categories. They contribute zero until offers arrive.
func (d *decoder) seedCategories() []budget.Category {
	if len(d.opts.BaseCategories) == 0 {
		return nil
	}
	out := make([]budget.Category, 0, len(d.opts.BaseCategories))
	for _, name := range d.opts.BaseCategories {
		out = append(out, budget.Category{
			ID:          uuid.NewString(),
			Name:        name,
			Visible:     true,
			PricingMode: budget.PricingFlat,
		})
	}
	return out
}

func (d *decoder) campaign(v any, path string, idx int) budget.Campaign {
	m, ok := v.(map[string]any)
	if !ok {
		d.warnf(path, "campaign is %T, using empty campaign", v)
		return d.emptyCampaign(fmt.Sprintf("Campaign %d", idx+1))
	}
	c := budget.Campaign{
		ID:   d.id(m, path),
		Name: stringOr(field(m, "name"), fmt.Sprintf("Campaign %d", idx+1)),
	}
	switch {
	case isList(m["categories"]):
		for i, cv := range m["categories"].([]any) {
			c.Categories = append(c.Categories, d.category(cv, fmt.Sprintf("%s.categories[%d]", path, i)))
		}
	case isList(field(m, "quotes_film", "quotesFilm")) || isList(field(m, "quotes_audio", "quotesAudio")):
		c.Categories = d.quoteListCategories(m, path)
	}
	if len(c.Categories) == 0 {
		c.Categories = d.seedCategories()
	}
	return c
}

// quoteListCategories folds the quote-list legacy shape into synthetic
// categories: film quotes always, audio quotes only behind the opt-in flag.
func (d *decoder) quoteListCategories(m map[string]any, path string) []budget.Category {
	var out []budget.Category
	if films, ok := field(m, "quotes_film", "quotesFilm").([]any); ok {
		cat := budget.Category{
			ID:          uuid.NewString(),
			Name:        "Film Production",
			Visible:     true,
			PricingMode: budget.PricingFlat,
		}
		for i, qv := range films {
			offer := d.offer(qv, fmt.Sprintf("%s.quotes_film[%d]", path, i))
			offer.Kind = budget.KindFilm
			cat.Offers = append(cat.Offers, offer)
		}
		out = append(out, cat)
	}
	includeAudio := boolValue(field(m, "includeAudio", "include_audio"))
	if audios, ok := field(m, "quotes_audio", "quotesAudio").([]any); ok && includeAudio && len(audios) > 0 {
		cat := budget.Category{
			ID:          uuid.NewString(),
			Name:        "Audio",
			Visible:     true,
			PricingMode: budget.PricingFlat,
		}
		for i, qv := range audios {
			offer := d.offer(qv, fmt.Sprintf("%s.quotes_audio[%d]", path, i))
			offer.Kind = budget.KindAudio
			cat.Offers = append(cat.Offers, offer)
		}
		out = append(out, cat)
	}
	return out
}

func (d *decoder) category(v any, path string) budget.Category {
	m, ok := v.(map[string]any)
	if !ok {
		d.warnf(path, "category is %T, using empty category", v)
		return budget.Category{ID: uuid.NewString(), Visible: true, PricingMode: budget.PricingFlat}
	}
	cat := budget.Category{
		ID:      d.id(m, path),
		Name:    stringOr(field(m, "name"), ""),
		Visible: boolOr(field(m, "visible"), true),
		Note:    stringOr(field(m, "note"), ""),
	}
	cat.PricingMode = d.pricingMode(m, path)
	if cat.PricingMode == budget.PricingItemized {
		if items, ok := m["items"].([]any); ok {
			for i, iv := range items {
				cat.Items = append(cat.Items, d.lineItem(iv, fmt.Sprintf("%s.items[%d]", path, i)))
			}
		}
		return cat
	}
	if offers, ok := m["offers"].([]any); ok {
		for i, ov := range offers {
			cat.Offers = append(cat.Offers, d.offer(ov, fmt.Sprintf("%s.offers[%d]", path, i)))
		}
	}
	return cat
}

// pricingMode honors an explicit mode first; otherwise a category carrying
// only items is treated as itemized, everything else defaults to flat.
func (d *decoder) pricingMode(m map[string]any, path string) budget.PricingMode {
	switch mode := stringOr(field(m, "pricingMode", "pricing_mode"), ""); mode {
	case string(budget.PricingFlat):
		return budget.PricingFlat
	case string(budget.PricingItemized):
		return budget.PricingItemized
	case "":
	default:
		d.warnf(path+".pricingMode", "unknown pricing mode %q, using flat", mode)
		return budget.PricingFlat
	}
	if isList(m["items"]) && !isList(m["offers"]) {
		return budget.PricingItemized
	}
	return budget.PricingFlat
}

func (d *decoder) offer(v any, path string) budget.Offer {
	m, ok := v.(map[string]any)
	if !ok {
		d.warnf(path, "offer is %T, using zero-value offer", v)
		return budget.Offer{ID: uuid.NewString(), Kind: budget.KindGeneric}
	}
	o := budget.Offer{
		ID:         d.id(m, path),
		Kind:       offerKind(field(m, "kind")),
		GrossValue: d.amount(field(m, "grossValue", "gross_value", "gross", "value"), path+".grossValue"),
		Discount:   d.amount(field(m, "discount"), path+".discount"),
		Selected:   boolValue(field(m, "selected")),
	}
	if opts, ok := field(m, "options", "opcoes").([]any); ok {
		for i, ov := range opts {
			o.Options = append(o.Options, d.option(ov, fmt.Sprintf("%s.options[%d]", path, i)))
		}
	}
	o.HasOptions = boolValue(field(m, "hasOptions", "has_options")) || len(o.Options) > 0
	return o
}

func (d *decoder) option(v any, path string) budget.Option {
	m, ok := v.(map[string]any)
	if !ok {
		d.warnf(path, "option is %T, using zero-value option", v)
		return budget.Option{ID: uuid.NewString()}
	}
	return budget.Option{
		ID:         d.id(m, path),
		Label:      stringOr(field(m, "label", "scope", "escopo"), ""),
		GrossValue: d.amount(field(m, "grossValue", "gross_value", "gross", "value"), path+".grossValue"),
		Discount:   d.amount(field(m, "discount"), path+".discount"),
		Selected:   boolValue(field(m, "selected")),
	}
}

func (d *decoder) lineItem(v any, path string) budget.LineItem {
	m, ok := v.(map[string]any)
	if !ok {
		d.warnf(path, "line item is %T, using zero-value item", v)
		return budget.LineItem{ID: uuid.NewString()}
	}
	return budget.LineItem{
		ID:          d.id(m, path),
		Description: stringOr(field(m, "description", "name"), ""),
		Quantity:    d.amount(field(m, "quantity", "qty"), path+".quantity"),
		UnitPrice:   d.amount(field(m, "unitPrice", "unit_price", "unit"), path+".unitPrice"),
		Discount:    d.amount(field(m, "discount"), path+".discount"),
	}
}

func (d *decoder) mode(v any) budget.CombinationMode {
	switch mode := stringOr(v, ""); mode {
	case string(budget.ModeIndividual), "":
		return budget.ModeIndividual
	case string(budget.ModeSum):
		return budget.ModeSum
	case string(budget.ModePackage):
		return budget.ModePackage
	default:
		d.warnf("combinationMode", "unknown combination mode %q, using individual", mode)
		return budget.ModeIndividual
	}
}

// id returns the entity's stable identity, minting a fresh one when the
// payload carries none.
func (d *decoder) id(m map[string]any, _ string) string {
	if s := stringOr(field(m, "id"), ""); s != "" {
		return s
	}
	return uuid.NewString()
}

package aggregate

import (
	"github.com/noah-isme/backend-orca/internal/budget"
	"github.com/noah-isme/backend-orca/internal/money"
	"github.com/noah-isme/backend-orca/internal/selection"
)

// CategoryBreakdown is one priced row in the client-facing summary. Flat
// categories carry the annotated winner; itemized categories only a subtotal.
type CategoryBreakdown struct {
	CategoryID string            `json:"categoryId"`
	Name       string            `json:"name"`
	Subtotal   money.Amount      `json:"subtotal"`
	Winner     *selection.Winner `json:"winner,omitempty"`
	ItemCount  int               `json:"itemCount,omitempty"`
}

// CampaignBreakdown groups the counted category rows of one campaign.
type CampaignBreakdown struct {
	CampaignID string              `json:"campaignId"`
	Name       string              `json:"name"`
	Categories []CategoryBreakdown `json:"categories"`
	Subtotal   money.Amount        `json:"subtotal"`
}

// Breakdown lists, per campaign, the categories that count toward pricing.
// Hidden categories and categories with nothing to price are excluded, so a
// flat category with zero offers never shows up in downstream documents.
func Breakdown(b budget.Budget) []CampaignBreakdown {
	out := make([]CampaignBreakdown, 0, len(b.Campaigns))
	for _, c := range b.Campaigns {
		cb := CampaignBreakdown{
			CampaignID: c.ID,
			Name:       c.Name,
			Categories: []CategoryBreakdown{},
			Subtotal:   money.Zero(),
		}
		for _, cat := range c.Categories {
			if !cat.Visible {
				continue
			}
			row := CategoryBreakdown{CategoryID: cat.ID, Name: cat.Name, Subtotal: CategorySubtotal(cat)}
			switch cat.PricingMode {
			case budget.PricingItemized:
				if len(cat.Items) == 0 {
					continue
				}
				row.ItemCount = len(cat.Items)
			default:
				w, ok := selection.Resolve(cat)
				if !ok {
					continue
				}
				row.Winner = &w
			}
			cb.Categories = append(cb.Categories, row)
			cb.Subtotal = cb.Subtotal.Add(row.Subtotal)
		}
		out = append(out, cb)
	}
	return out
}

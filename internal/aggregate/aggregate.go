// Package aggregate rolls category subtotals up through campaigns into the
// budget total under the active combination mode.
package aggregate

import (
	"github.com/noah-isme/backend-orca/internal/budget"
	"github.com/noah-isme/backend-orca/internal/money"
	"github.com/noah-isme/backend-orca/internal/selection"
)

// CategorySubtotal prices a single category: the winner's net for flat mode,
// the sum of line nets for itemized mode. Empty categories contribute zero.
func CategorySubtotal(cat budget.Category) money.Amount {
	switch cat.PricingMode {
	case budget.PricingItemized:
		sum := money.Zero()
		for _, item := range cat.Items {
			sum = sum.Add(item.Net())
		}
		return sum
	default:
		if w, ok := selection.Resolve(cat); ok {
			return w.Net
		}
		return money.Zero()
	}
}

// CampaignSubtotal sums the subtotals of the campaign's visible categories.
func CampaignSubtotal(c budget.Campaign) money.Amount {
	sum := money.Zero()
	for _, cat := range c.Categories {
		if !cat.Visible {
			continue
		}
		sum = sum.Add(CategorySubtotal(cat))
	}
	return sum
}

// Compute produces the budget totals, including every intermediate figure.
//
// individual: honorarium per campaign, grand total = Σ campaign totals.
// sum: honorarium once on the consolidated subtotal.
// package: package discount on the consolidated subtotal, then honorarium on
// the discounted figure.
func Compute(b budget.Budget) budget.Totals {
	totals := budget.Totals{
		PerCampaign:           make([]budget.CampaignTotal, 0, len(b.Campaigns)),
		CombinedSubtotal:      money.Zero(),
		PackageDiscountAmount: money.Zero(),
		HonorariumAmount:      money.Zero(),
		GrandTotal:            money.Zero(),
	}

	for _, c := range b.Campaigns {
		sub := CampaignSubtotal(c)
		ct := budget.CampaignTotal{
			CampaignID: c.ID,
			Name:       c.Name,
			Subtotal:   sub,
			Honorarium: money.Zero(),
			Total:      sub,
		}
		if b.CombinationMode == budget.ModeIndividual {
			ct.Honorarium = money.Percent(sub, b.HonorariumPercent)
			ct.Total = sub.Add(ct.Honorarium)
		}
		totals.PerCampaign = append(totals.PerCampaign, ct)
		totals.CombinedSubtotal = totals.CombinedSubtotal.Add(sub)
	}

	switch b.CombinationMode {
	case budget.ModeIndividual:
		for _, ct := range totals.PerCampaign {
			totals.HonorariumAmount = totals.HonorariumAmount.Add(ct.Honorarium)
			totals.GrandTotal = totals.GrandTotal.Add(ct.Total)
		}
	case budget.ModePackage:
		totals.PackageDiscountAmount = money.Percent(totals.CombinedSubtotal, b.PackageDiscountPercent)
		discounted := totals.CombinedSubtotal.Sub(totals.PackageDiscountAmount)
		totals.HonorariumAmount = money.Percent(discounted, b.HonorariumPercent)
		totals.GrandTotal = discounted.Add(totals.HonorariumAmount)
	default: // sum
		totals.HonorariumAmount = money.Percent(totals.CombinedSubtotal, b.HonorariumPercent)
		totals.GrandTotal = totals.CombinedSubtotal.Add(totals.HonorariumAmount)
	}

	return totals
}

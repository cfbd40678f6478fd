package budget

import "github.com/noah-isme/backend-orca/internal/money"

// CampaignTotal carries the computed figures for one campaign.
type CampaignTotal struct {
	CampaignID string       `json:"campaignId"`
	Name       string       `json:"name"`
	Subtotal   money.Amount `json:"subtotal"`
	Honorarium money.Amount `json:"honorarium"`
	Total      money.Amount `json:"total"`
}

// Totals exposes the budget total plus every intermediate figure the
// rendering collaborators display individually.
type Totals struct {
	PerCampaign           []CampaignTotal `json:"perCampaign"`
	CombinedSubtotal      money.Amount    `json:"combinedSubtotal"`
	PackageDiscountAmount money.Amount    `json:"packageDiscountAmount"`
	HonorariumAmount      money.Amount    `json:"honorariumAmount"`
	GrandTotal            money.Amount    `json:"grandTotal"`
}

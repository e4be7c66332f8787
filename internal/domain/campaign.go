package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CampaignStatus string

const (
	CampaignFunding           CampaignStatus = "FUNDING"
	CampaignDividendsDeclared CampaignStatus = "DIVIDENDS_DECLARED"
	CampaignClosed            CampaignStatus = "CLOSED"
	CampaignArchived          CampaignStatus = "ARCHIVED"
)

type Campaign struct {
	ID             uint            `json:"id"`
	Title          string          `json:"title"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description"`
	Status         CampaignStatus  `json:"status"`
	HardCap        decimal.Decimal `json:"hard_cap"`
	TokenPriceUSD  decimal.Decimal `json:"token_price_usd"`
	TotalRaised    decimal.Decimal `json:"total_raised"`
	TotalInvestors int             `json:"total_investors"`
	ROIEstimatePct *float64        `json:"roi_estimate_pct,omitempty"`
	RiskLevel      string          `json:"risk_level,omitempty"`
	StartsAt       *time.Time      `json:"starts_at,omitempty"`
	EndsAt         *time.Time      `json:"ends_at,omitempty"`
	TokenStats     *TokenStats     `json:"token_stats,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TokenStats tracks the token supply of a campaign. Supply limits are
// only enforced for campaigns that carry these stats.
type TokenStats struct {
	TokenAddress string          `json:"token_address"`
	ChainID      int64           `json:"chain_id"`
	TotalSupply  decimal.Decimal `json:"total_supply"`
	SoldSupply   decimal.Decimal `json:"sold_supply"`
	HoldersCount int             `json:"holders_count"`
}

// AcceptsInvestments reports whether the campaign lifecycle still admits
// new contributions. DIVIDENDS_DECLARED campaigns keep funding.
func (c Campaign) AcceptsInvestments() bool {
	return c.Status != CampaignClosed && c.Status != CampaignArchived
}

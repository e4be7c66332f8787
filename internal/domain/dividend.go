package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ShareScale is the number of fractional digits a claim amount is
// rounded to before residual reconciliation.
const ShareScale = 8

var ErrNoTokens = errors.New("total token balance is zero")

type Dividend struct {
	ID            uint            `json:"id"`
	CampaignID    uint            `json:"campaign_id"`
	PeriodLabel   string          `json:"period_label"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SettlementRef string          `json:"settlement_ref,omitempty"`
	DeclaredAt    time.Time       `json:"declared_at"`
	Claims        []DividendClaim `json:"claims,omitempty"`
}

type DividendClaim struct {
	ID            uint            `json:"id"`
	DividendID    uint            `json:"dividend_id"`
	UserID        uint            `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Claimed       bool            `json:"claimed"`
	ClaimedAt     *time.Time      `json:"claimed_at,omitempty"`
	SettlementRef string          `json:"settlement_ref,omitempty"`
}

// HolderBalance is one holder's aggregate token balance at snapshot time.
type HolderBalance struct {
	UserID uint
	Tokens decimal.Decimal
}

// ClaimShare is one holder's computed share of a declared total.
type ClaimShare struct {
	UserID uint
	Amount decimal.Decimal
}

// SplitDividend divides total between holders pro rata to their token
// balances. Shares are rounded to ShareScale fractional digits, half away
// from zero. The rounding residual is absorbed by the largest share
// (lowest holder ID on ties) so the shares always sum to total exactly.
// Holders are processed sorted by ID, making the result deterministic
// regardless of input order.
func SplitDividend(total decimal.Decimal, holders []HolderBalance) ([]ClaimShare, error) {
	sorted := make([]HolderBalance, len(holders))
	copy(sorted, holders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].UserID < sorted[j].UserID })

	totalTokens := decimal.Zero
	for _, h := range sorted {
		totalTokens = totalTokens.Add(h.Tokens)
	}
	if !totalTokens.IsPositive() {
		return nil, ErrNoTokens
	}

	shares := make([]ClaimShare, len(sorted))
	allocated := decimal.Zero
	for i, h := range sorted {
		amount := h.Tokens.Mul(total).Div(totalTokens).Round(ShareScale)
		shares[i] = ClaimShare{UserID: h.UserID, Amount: amount}
		allocated = allocated.Add(amount)
	}

	residual := total.Sub(allocated)
	if !residual.IsZero() {
		largest := 0
		for i := 1; i < len(shares); i++ {
			if shares[i].Amount.GreaterThan(shares[largest].Amount) {
				largest = i
			}
		}
		shares[largest].Amount = shares[largest].Amount.Add(residual)
	}

	return shares, nil
}

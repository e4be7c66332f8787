package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Investment struct {
	ID            uint            `json:"id"`
	CampaignID    uint            `json:"campaign_id"`
	UserID        uint            `json:"user_id"`
	WalletAddress string          `json:"wallet_address"`
	// PaymentRef is the external payment reference (transaction hash).
	// Unique system-wide, which makes retried admissions a no-op.
	PaymentRef  string          `json:"payment_ref"`
	AmountUSD   decimal.Decimal `json:"amount_usd"`
	TokenAmount decimal.Decimal `json:"token_amount"`
	Flagged     bool            `json:"flagged"`
	CreatedAt   time.Time       `json:"created_at"`
}

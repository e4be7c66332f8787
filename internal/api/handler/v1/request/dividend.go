package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type DeclareDividendRequest struct {
	CampaignID    uint   `json:"campaign_id"`
	PeriodLabel   string `json:"period_label"`
	TotalAmount   string `json:"total_amount"`
	SettlementRef string `json:"settlement_ref,omitempty"`
}

func (req *DeclareDividendRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CampaignID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.PeriodLabel, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.TotalAmount, validation.Required, validation.By(validDecimalString)),
	)
}

type ClaimDividendRequest struct {
	SettlementRef string `json:"settlement_ref,omitempty"`
}

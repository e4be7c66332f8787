package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateInvestmentRequest struct {
	CampaignID    uint   `json:"campaign_id"`
	AmountUSD     string `json:"amount_usd"`
	TokenAmount   string `json:"token_amount"`
	PaymentRef    string `json:"payment_ref"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

func (req *CreateInvestmentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CampaignID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.AmountUSD, validation.Required, validation.By(validDecimalString)),
		validation.Field(&req.TokenAmount, validation.Required, validation.By(validDecimalString)),
		validation.Field(&req.PaymentRef, validation.Required),
		validation.Field(&req.WalletAddress, validation.By(validWalletAddress)),
	)
}

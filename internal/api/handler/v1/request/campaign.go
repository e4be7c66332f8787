package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	slugPattern    = regexp2.MustCompile(`^[a-z0-9-]+$`, regexp2.None)
	decimalPattern = regexp2.MustCompile(`^\d+(\.\d+)?$`, regexp2.None)
)

func validSlug(value interface{}) error {
	slug, _ := value.(string)
	if ok, _ := slugPattern.MatchString(slug); !ok {
		return errors.New("must contain only lowercase letters, digits and dashes")
	}

	return nil
}

func validDecimalString(value interface{}) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	if ok, _ := decimalPattern.MatchString(raw); !ok {
		return errors.New("must be a non-negative decimal number")
	}

	return nil
}

type TokenStatsRequest struct {
	TokenAddress string `json:"token_address"`
	ChainID      int64  `json:"chain_id"`
	TotalSupply  string `json:"total_supply"`
}

type CreateCampaignRequest struct {
	Title          string             `json:"title"`
	Slug           string             `json:"slug"`
	Description    string             `json:"description"`
	HardCap        string             `json:"hard_cap"`
	TokenPriceUSD  string             `json:"token_price_usd"`
	ROIEstimatePct *float64           `json:"roi_estimate_pct,omitempty"`
	RiskLevel      string             `json:"risk_level,omitempty"`
	StartsAt       string             `json:"starts_at,omitempty"`
	EndsAt         string             `json:"ends_at,omitempty"`
	TokenStats     *TokenStatsRequest `json:"token_stats,omitempty"`
}

func (req *CreateCampaignRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(3, 100)),
		validation.Field(&req.Slug, validation.Required, validation.By(validSlug)),
		validation.Field(&req.Description, validation.Required, validation.Length(10, 5000)),
		validation.Field(&req.HardCap, validation.Required, validation.By(validDecimalString)),
		validation.Field(&req.TokenPriceUSD, validation.Required, validation.By(validDecimalString)),
	)
}

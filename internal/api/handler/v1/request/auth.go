package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

var walletPattern = regexp2.MustCompile(`^0x[0-9a-fA-F]{40}$`, regexp2.None)

func validWalletAddress(value interface{}) error {
	addr, _ := value.(string)
	if addr == "" {
		return nil
	}

	if ok, _ := walletPattern.MatchString(addr); !ok {
		return errors.New("must be a 0x-prefixed 40-hex-digit address")
	}

	return nil
}

type SignupRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	WalletAddress string `json:"wallet_address"`
	Role          string `json:"role"`
}

func (req *SignupRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, validation.Length(3, 100)),
		validation.Field(&req.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&req.WalletAddress, validation.Required, validation.By(validWalletAddress)),
		validation.Field(&req.Role, validation.In("investor", "issuer", "admin")),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

package domain

import "time"

const (
	RoleInvestor = "investor"
	RoleIssuer   = "issuer"
	RoleAdmin    = "admin"
)

type User struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	WalletAddress string    `json:"wallet_address"`
	KYCStatus     KYCStatus `json:"kyc_status"`
	KYCSessionID  string    `json:"-"`
	KYCUpdatedAt  time.Time `json:"kyc_updated_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

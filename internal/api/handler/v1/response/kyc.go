package response

import "github.com/tokenvest/tokenvest-api/internal/domain"

type KYCSessionResponse struct {
	SessionID string           `json:"session_id"`
	Status    domain.KYCStatus `json:"status"`
}

type KYCStatusResponse struct {
	Status domain.KYCStatus `json:"status"`
}

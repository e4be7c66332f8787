package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type KYCFileRequest struct {
	Type       string `json:"type"`
	StorageKey string `json:"storage_key"`
	SHA256     string `json:"sha256"`
}

func (req *KYCFileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Type, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.StorageKey, validation.Required),
		validation.Field(&req.SHA256, validation.Required, validation.Length(64, 64)),
	)
}

type KYCWebhookRequest struct {
	Provider  string `json:"provider"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

func (req *KYCWebhookRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Provider, validation.Required),
		validation.Field(&req.SessionID, validation.Required),
		validation.Field(&req.Status, validation.Required),
	)
}

type KYCOverrideRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func (req *KYCOverrideRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required),
	)
}

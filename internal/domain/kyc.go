package domain

import "time"

type KYCStatus string

const (
	KYCPending      KYCStatus = "PENDING"
	KYCDocsRequired KYCStatus = "DOCS_REQUIRED"
	KYCReview       KYCStatus = "REVIEW"
	KYCApproved     KYCStatus = "APPROVED"
	KYCRejected     KYCStatus = "REJECTED"
	KYCRevoked      KYCStatus = "REVOKED"
)

// kycTransitions lists the legal target statuses per current status.
// REVOKED is terminal.
var kycTransitions = map[KYCStatus][]KYCStatus{
	KYCPending:      {KYCDocsRequired, KYCReview, KYCApproved, KYCRejected},
	KYCDocsRequired: {KYCReview, KYCApproved, KYCRejected},
	KYCReview:       {KYCApproved, KYCRejected},
	KYCApproved:     {KYCRevoked},
	KYCRejected:     {KYCReview},
	KYCRevoked:      {},
}

func (s KYCStatus) IsValid() bool {
	_, ok := kycTransitions[s]
	return ok
}

func (s KYCStatus) CanTransitionTo(target KYCStatus) bool {
	for _, allowed := range kycTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// KYCStatusChange is one entry of the append-only transition history.
type KYCStatusChange struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	FromStatus KYCStatus `json:"from_status"`
	ToStatus   KYCStatus `json:"to_status"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// KYCFile references an uploaded verification document. Only metadata is
// kept here; the document itself lives in external storage.
type KYCFile struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Type       string    `json:"type"`
	StorageKey string    `json:"storage_key"`
	HashSHA256 string    `json:"hash_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

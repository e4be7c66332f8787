package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKYCStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    KYCStatus
		to      KYCStatus
		allowed bool
	}{
		{KYCPending, KYCDocsRequired, true},
		{KYCPending, KYCReview, true},
		{KYCPending, KYCApproved, true},
		{KYCPending, KYCRejected, true},
		{KYCPending, KYCRevoked, false},
		{KYCDocsRequired, KYCReview, true},
		{KYCDocsRequired, KYCApproved, true},
		{KYCDocsRequired, KYCPending, false},
		{KYCReview, KYCApproved, true},
		{KYCReview, KYCRejected, true},
		{KYCReview, KYCDocsRequired, false},
		{KYCApproved, KYCRevoked, true},
		{KYCApproved, KYCRejected, false},
		{KYCRejected, KYCReview, true},
		{KYCRejected, KYCApproved, false},
		{KYCRevoked, KYCPending, false},
		{KYCRevoked, KYCApproved, false},
		{KYCRevoked, KYCReview, false},
	}

	for _, tt := range tests {
		name := string(tt.from) + "->" + string(tt.to)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestKYCStatus_IsValid(t *testing.T) {
	for _, s := range []KYCStatus{KYCPending, KYCDocsRequired, KYCReview, KYCApproved, KYCRejected, KYCRevoked} {
		assert.True(t, s.IsValid(), "%v should be valid", s)
	}

	assert.False(t, KYCStatus("UNKNOWN").IsValid())
	assert.False(t, KYCStatus("").IsValid())
}

func TestCampaign_AcceptsInvestments(t *testing.T) {
	assert.True(t, Campaign{Status: CampaignFunding}.AcceptsInvestments())
	assert.True(t, Campaign{Status: CampaignDividendsDeclared}.AcceptsInvestments())
	assert.False(t, Campaign{Status: CampaignClosed}.AcceptsInvestments())
	assert.False(t, Campaign{Status: CampaignArchived}.AcceptsInvestments())
}

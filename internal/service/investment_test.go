package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvest/tokenvest-api/internal/domain"
)

const testPaymentRef = "0x4e3a1f0b9c8d7e6f5a4b3c2d1e0f9a8b7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e2f"

type fakeInvestmentRepo struct {
	created []domain.Investment
	err     error
}

func (f *fakeInvestmentRepo) Create(_ context.Context, inv domain.Investment) (domain.Investment, error) {
	if f.err != nil {
		return domain.Investment{}, f.err
	}

	inv.ID = uint(len(f.created) + 1)
	f.created = append(f.created, inv)

	return inv, nil
}

func (f *fakeInvestmentRepo) FindByCampaignID(_ context.Context, campaignID uint, _ int) ([]domain.Investment, error) {
	var out []domain.Investment
	for _, inv := range f.created {
		if inv.CampaignID == campaignID {
			out = append(out, inv)
		}
	}

	return out, nil
}

type fakeCampaignReader struct {
	campaigns map[uint]domain.Campaign
}

func (f *fakeCampaignReader) GetByID(_ context.Context, id uint) (domain.Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok {
		return domain.Campaign{}, ErrCampaignNotFound
	}

	return campaign, nil
}

type fakeUserReader struct {
	users map[uint]domain.User
}

func (f *fakeUserReader) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	return user, nil
}

func approvedInvestor(id uint) domain.User {
	return domain.User{
		ID:            id,
		Role:          domain.RoleInvestor,
		WalletAddress: "0xabc0000000000000000000000000000000000001",
		KYCStatus:     domain.KYCApproved,
	}
}

func fundingCampaign(id uint) domain.Campaign {
	return domain.Campaign{
		ID:          id,
		Status:      domain.CampaignFunding,
		HardCap:     decimal.NewFromInt(1000),
		TotalRaised: decimal.Zero,
	}
}

func newTestInvestment(campaignID, userID uint, amount int64) domain.Investment {
	return domain.Investment{
		CampaignID:  campaignID,
		UserID:      userID,
		PaymentRef:  testPaymentRef,
		AmountUSD:   decimal.NewFromInt(amount),
		TokenAmount: decimal.NewFromInt(amount),
	}
}

func TestInvestmentService_Invest(t *testing.T) {
	t.Run("admits a valid contribution", func(t *testing.T) {
		repo := &fakeInvestmentRepo{}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: fundingCampaign(1)}}
		users := &fakeUserReader{users: map[uint]domain.User{7: approvedInvestor(7)}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyReject)

		created, err := svc.Invest(context.Background(), newTestInvestment(1, 7, 100))
		require.NoError(t, err)

		assert.NotZero(t, created.ID)
		assert.False(t, created.Flagged)
		assert.Equal(t, "0xabc0000000000000000000000000000000000001", created.WalletAddress)
		require.Len(t, repo.created, 1)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := &fakeInvestmentRepo{}
		svc := NewInvestmentService(repo, &fakeCampaignReader{}, &fakeUserReader{}, KYCPolicyReject)

		inv := newTestInvestment(1, 7, 100)
		inv.AmountUSD = decimal.Zero

		_, err := svc.Invest(context.Background(), inv)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Empty(t, repo.created)
	})

	t.Run("rejects malformed payment references", func(t *testing.T) {
		repo := &fakeInvestmentRepo{}
		svc := NewInvestmentService(repo, &fakeCampaignReader{}, &fakeUserReader{}, KYCPolicyReject)

		inv := newTestInvestment(1, 7, 100)
		inv.PaymentRef = "not-a-tx-hash"

		_, err := svc.Invest(context.Background(), inv)
		assert.ErrorIs(t, err, ErrInvalidPaymentRef)
		assert.Empty(t, repo.created)
	})

	t.Run("rejects closed campaigns", func(t *testing.T) {
		campaign := fundingCampaign(1)
		campaign.Status = domain.CampaignClosed

		repo := &fakeInvestmentRepo{}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: campaign}}
		users := &fakeUserReader{users: map[uint]domain.User{7: approvedInvestor(7)}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyReject)

		_, err := svc.Invest(context.Background(), newTestInvestment(1, 7, 100))
		assert.ErrorIs(t, err, ErrCampaignClosed)
		assert.Empty(t, repo.created)
	})

	t.Run("rejects contributions over the hard cap", func(t *testing.T) {
		campaign := fundingCampaign(1)
		campaign.TotalRaised = decimal.NewFromInt(990)

		repo := &fakeInvestmentRepo{}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: campaign}}
		users := &fakeUserReader{users: map[uint]domain.User{7: approvedInvestor(7)}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyReject)

		_, err := svc.Invest(context.Background(), newTestInvestment(1, 7, 20))
		require.ErrorIs(t, err, ErrHardCapExceeded)

		var le *LimitError
		require.ErrorAs(t, err, &le)
		assert.True(t, le.Limit.Equal(decimal.NewFromInt(1000)), "limit %v", le.Limit)
		assert.True(t, le.Attempted.Equal(decimal.NewFromInt(1010)), "attempted %v", le.Attempted)
		assert.Empty(t, repo.created)
	})

	t.Run("rejects contributions over the token supply", func(t *testing.T) {
		campaign := fundingCampaign(1)
		campaign.TokenStats = &domain.TokenStats{
			TotalSupply: decimal.NewFromInt(500),
			SoldSupply:  decimal.NewFromInt(490),
		}

		repo := &fakeInvestmentRepo{}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: campaign}}
		users := &fakeUserReader{users: map[uint]domain.User{7: approvedInvestor(7)}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyReject)

		inv := newTestInvestment(1, 7, 20)
		inv.TokenAmount = decimal.NewFromInt(20)

		_, err := svc.Invest(context.Background(), inv)
		require.ErrorIs(t, err, ErrSupplyExceeded)

		var le *LimitError
		require.ErrorAs(t, err, &le)
		assert.True(t, le.Limit.Equal(decimal.NewFromInt(500)), "limit %v", le.Limit)
		assert.Empty(t, repo.created)
	})

	t.Run("rejects non-approved investors under the reject policy", func(t *testing.T) {
		investor := approvedInvestor(7)
		investor.KYCStatus = domain.KYCReview

		repo := &fakeInvestmentRepo{}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: fundingCampaign(1)}}
		users := &fakeUserReader{users: map[uint]domain.User{7: investor}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyReject)

		_, err := svc.Invest(context.Background(), newTestInvestment(1, 7, 100))
		assert.ErrorIs(t, err, ErrInvestorNotEligible)
		assert.Empty(t, repo.created)
	})

	t.Run("flags non-approved investors under the flag policy", func(t *testing.T) {
		investor := approvedInvestor(7)
		investor.KYCStatus = domain.KYCPending

		repo := &fakeInvestmentRepo{}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: fundingCampaign(1)}}
		users := &fakeUserReader{users: map[uint]domain.User{7: investor}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyFlag)

		created, err := svc.Invest(context.Background(), newTestInvestment(1, 7, 100))
		require.NoError(t, err)
		assert.True(t, created.Flagged)
	})

	t.Run("lowercases an explicit wallet address", func(t *testing.T) {
		repo := &fakeInvestmentRepo{}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: fundingCampaign(1)}}
		users := &fakeUserReader{users: map[uint]domain.User{7: approvedInvestor(7)}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyReject)

		inv := newTestInvestment(1, 7, 100)
		inv.WalletAddress = "0xABC0000000000000000000000000000000000002"

		created, err := svc.Invest(context.Background(), inv)
		require.NoError(t, err)
		assert.Equal(t, "0xabc0000000000000000000000000000000000002", created.WalletAddress)
	})

	t.Run("surfaces duplicate payment references", func(t *testing.T) {
		repo := &fakeInvestmentRepo{err: ErrDuplicatePaymentRef}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: fundingCampaign(1)}}
		users := &fakeUserReader{users: map[uint]domain.User{7: approvedInvestor(7)}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyReject)

		_, err := svc.Invest(context.Background(), newTestInvestment(1, 7, 100))
		assert.True(t, errors.Is(err, ErrDuplicatePaymentRef))
	})

	t.Run("unknown campaign", func(t *testing.T) {
		repo := &fakeInvestmentRepo{}
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{}}
		users := &fakeUserReader{users: map[uint]domain.User{7: approvedInvestor(7)}}
		svc := NewInvestmentService(repo, campaigns, users, KYCPolicyReject)

		_, err := svc.Invest(context.Background(), newTestInvestment(99, 7, 100))
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})
}

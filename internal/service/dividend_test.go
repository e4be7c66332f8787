package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvest/tokenvest-api/internal/domain"
)

type fakeDividendRepo struct {
	declared  []domain.Dividend
	claims    map[uint][]domain.DividendClaim
	claimsSeq uint
}

func newFakeDividendRepo() *fakeDividendRepo {
	return &fakeDividendRepo{claims: make(map[uint][]domain.DividendClaim)}
}

func (f *fakeDividendRepo) Declare(_ context.Context, dividend domain.Dividend) (domain.Dividend, error) {
	dividend.ID = uint(len(f.declared) + 1)
	f.declared = append(f.declared, dividend)

	return dividend, nil
}

func (f *fakeDividendRepo) Claim(_ context.Context, dividendID, userID uint, settlementRef string) (domain.DividendClaim, error) {
	for i, c := range f.claims[dividendID] {
		if c.UserID != userID {
			continue
		}

		if c.Claimed {
			return domain.DividendClaim{}, ErrDividendAlreadyClaimed
		}

		now := time.Now()
		c.Claimed = true
		c.ClaimedAt = &now
		c.SettlementRef = settlementRef
		f.claims[dividendID][i] = c

		return c, nil
	}

	return domain.DividendClaim{}, ErrClaimNotFound
}

func (f *fakeDividendRepo) FindByCampaignID(_ context.Context, campaignID uint) ([]domain.Dividend, error) {
	var out []domain.Dividend
	for _, d := range f.declared {
		if d.CampaignID == campaignID {
			out = append(out, d)
		}
	}

	return out, nil
}

func (f *fakeDividendRepo) FindClaims(_ context.Context, dividendID uint) ([]domain.DividendClaim, error) {
	return f.claims[dividendID], nil
}

func (f *fakeDividendRepo) FindClaimsByUser(_ context.Context, dividendIDs []uint, userID uint) ([]domain.DividendClaim, error) {
	var out []domain.DividendClaim
	for _, id := range dividendIDs {
		for _, c := range f.claims[id] {
			if c.UserID == userID {
				out = append(out, c)
			}
		}
	}

	return out, nil
}

func (f *fakeDividendRepo) addClaim(dividendID, userID uint, amount decimal.Decimal) {
	f.claimsSeq++
	f.claims[dividendID] = append(f.claims[dividendID], domain.DividendClaim{
		ID:         f.claimsSeq,
		DividendID: dividendID,
		UserID:     userID,
		Amount:     amount,
	})
}

func raisedCampaign(id uint, raised int64) domain.Campaign {
	return domain.Campaign{
		ID:          id,
		Status:      domain.CampaignFunding,
		HardCap:     decimal.NewFromInt(raised * 10),
		TotalRaised: decimal.NewFromInt(raised),
	}
}

func TestDividendService_Declare(t *testing.T) {
	t.Run("declares and stamps the declaration time", func(t *testing.T) {
		repo := newFakeDividendRepo()
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: raisedCampaign(1, 10000)}}
		svc := NewDividendService(repo, campaigns)

		declared, err := svc.Declare(context.Background(), domain.Dividend{
			CampaignID:  1,
			PeriodLabel: "2026-Q2",
			TotalAmount: decimal.NewFromInt(400),
		})
		require.NoError(t, err)

		assert.NotZero(t, declared.ID)
		assert.False(t, declared.DeclaredAt.IsZero())
		require.Len(t, repo.declared, 1)
	})

	t.Run("rejects non-positive totals", func(t *testing.T) {
		repo := newFakeDividendRepo()
		svc := NewDividendService(repo, &fakeCampaignReader{})

		_, err := svc.Declare(context.Background(), domain.Dividend{CampaignID: 1, TotalAmount: decimal.Zero})
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Empty(t, repo.declared)
	})

	t.Run("unknown campaign", func(t *testing.T) {
		repo := newFakeDividendRepo()
		svc := NewDividendService(repo, &fakeCampaignReader{campaigns: map[uint]domain.Campaign{}})

		_, err := svc.Declare(context.Background(), domain.Dividend{CampaignID: 9, TotalAmount: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, ErrCampaignNotFound)
	})

	t.Run("rejects totals above the raised amount", func(t *testing.T) {
		repo := newFakeDividendRepo()
		campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: raisedCampaign(1, 500)}}
		svc := NewDividendService(repo, campaigns)

		_, err := svc.Declare(context.Background(), domain.Dividend{
			CampaignID:  1,
			TotalAmount: decimal.NewFromInt(600),
		})
		require.ErrorIs(t, err, ErrDividendExceedsRaised)

		var le *LimitError
		require.ErrorAs(t, err, &le)
		assert.True(t, le.Limit.Equal(decimal.NewFromInt(500)), "limit %v", le.Limit)
		assert.True(t, le.Attempted.Equal(decimal.NewFromInt(600)), "attempted %v", le.Attempted)
		assert.Empty(t, repo.declared)
	})
}

func TestDividendService_Claim(t *testing.T) {
	t.Run("settles a share exactly once", func(t *testing.T) {
		repo := newFakeDividendRepo()
		repo.addClaim(1, 7, decimal.NewFromInt(100))
		svc := NewDividendService(repo, &fakeCampaignReader{})

		claim, err := svc.Claim(context.Background(), 1, 7, "wire-123")
		require.NoError(t, err)
		assert.True(t, claim.Claimed)
		assert.NotNil(t, claim.ClaimedAt)
		assert.Equal(t, "wire-123", claim.SettlementRef)

		_, err = svc.Claim(context.Background(), 1, 7, "wire-124")
		assert.ErrorIs(t, err, ErrDividendAlreadyClaimed)
	})

	t.Run("unknown claim", func(t *testing.T) {
		repo := newFakeDividendRepo()
		svc := NewDividendService(repo, &fakeCampaignReader{})

		_, err := svc.Claim(context.Background(), 1, 7, "")
		assert.ErrorIs(t, err, ErrClaimNotFound)
	})
}

func TestDividendService_ListByCampaign(t *testing.T) {
	repo := newFakeDividendRepo()
	campaigns := &fakeCampaignReader{campaigns: map[uint]domain.Campaign{1: raisedCampaign(1, 10000)}}
	svc := NewDividendService(repo, campaigns)

	declared, err := svc.Declare(context.Background(), domain.Dividend{
		CampaignID:  1,
		PeriodLabel: "2026-Q1",
		TotalAmount: decimal.NewFromInt(400),
	})
	require.NoError(t, err)

	repo.addClaim(declared.ID, 7, decimal.NewFromInt(100))
	repo.addClaim(declared.ID, 8, decimal.NewFromInt(300))

	t.Run("anonymous listing carries no claims", func(t *testing.T) {
		dividends, err := svc.ListByCampaign(context.Background(), 1, 0)
		require.NoError(t, err)
		require.Len(t, dividends, 1)
		assert.Empty(t, dividends[0].Claims)
	})

	t.Run("authenticated listing carries only the caller's claim", func(t *testing.T) {
		dividends, err := svc.ListByCampaign(context.Background(), 1, 7)
		require.NoError(t, err)
		require.Len(t, dividends, 1)
		require.Len(t, dividends[0].Claims, 1)
		assert.Equal(t, uint(7), dividends[0].Claims[0].UserID)
		assert.True(t, dividends[0].Claims[0].Amount.Equal(decimal.NewFromInt(100)))
	})
}

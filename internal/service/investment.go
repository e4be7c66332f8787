package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository"
)

var (
	ErrCampaignNotFound    = repository.ErrCampaignNotFound
	ErrCampaignClosed      = repository.ErrCampaignClosed
	ErrHardCapExceeded     = repository.ErrHardCapExceeded
	ErrSupplyExceeded      = repository.ErrSupplyExceeded
	ErrDuplicatePaymentRef = repository.ErrDuplicatePaymentRef

	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidPaymentRef   = errors.New("malformed payment reference")
	ErrInvestorNotEligible = errors.New("investor is not KYC approved")
)

// LimitError carries the violated limit and the attempted value.
type LimitError = repository.LimitError

// KYC admission policies. "reject" refuses non-approved investors,
// "flag" admits them and marks the investment for later reconciliation.
const (
	KYCPolicyReject = "reject"
	KYCPolicyFlag   = "flag"
)

var paymentRefPattern = regexp2.MustCompile(`^0x[0-9a-fA-F]{64}$`, regexp2.None)

type InvestmentRepository interface {
	Create(ctx context.Context, inv domain.Investment) (domain.Investment, error)
	FindByCampaignID(ctx context.Context, campaignID uint, limit int) ([]domain.Investment, error)
}

type CampaignReader interface {
	GetByID(ctx context.Context, id uint) (domain.Campaign, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type InvestmentService struct {
	repo      InvestmentRepository
	campaigns CampaignReader
	users     UserReader
	kycPolicy string
}

func NewInvestmentService(repo InvestmentRepository, campaigns CampaignReader, users UserReader, kycPolicy string) *InvestmentService {
	if kycPolicy != KYCPolicyFlag {
		kycPolicy = KYCPolicyReject
	}

	return &InvestmentService{
		repo:      repo,
		campaigns: campaigns,
		users:     users,
		kycPolicy: kycPolicy,
	}
}

// Invest validates and records one contribution. Limits are checked here
// against the latest read and re-validated inside the storage
// transaction, so a concurrent admission cannot push the campaign over
// its hard cap or token supply. Retrying with the same payment reference
// is safe: duplicates are rejected, never double-admitted.
func (s *InvestmentService) Invest(ctx context.Context, inv domain.Investment) (domain.Investment, error) {
	if !inv.AmountUSD.IsPositive() || !inv.TokenAmount.IsPositive() {
		return domain.Investment{}, ErrInvalidAmount
	}

	if ok, _ := paymentRefPattern.MatchString(inv.PaymentRef); !ok {
		return domain.Investment{}, ErrInvalidPaymentRef
	}

	user, err := s.users.FindByID(ctx, inv.UserID)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	if inv.WalletAddress == "" {
		inv.WalletAddress = user.WalletAddress
	}
	inv.WalletAddress = strings.ToLower(inv.WalletAddress)

	if user.KYCStatus != domain.KYCApproved {
		if s.kycPolicy == KYCPolicyReject {
			return domain.Investment{}, ErrInvestorNotEligible
		}
		inv.Flagged = true
	}

	campaign, err := s.campaigns.GetByID(ctx, inv.CampaignID)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			return domain.Investment{}, ErrCampaignNotFound
		}
		return domain.Investment{}, fmt.Errorf("s.campaigns.GetByID -> %w", err)
	}

	if !campaign.AcceptsInvestments() {
		return domain.Investment{}, ErrCampaignClosed
	}

	newTotalRaised := campaign.TotalRaised.Add(inv.AmountUSD)
	if newTotalRaised.GreaterThan(campaign.HardCap) {
		return domain.Investment{}, &LimitError{Kind: ErrHardCapExceeded, Limit: campaign.HardCap, Attempted: newTotalRaised}
	}

	if campaign.TokenStats != nil {
		newSold := campaign.TokenStats.SoldSupply.Add(inv.TokenAmount)
		if newSold.GreaterThan(campaign.TokenStats.TotalSupply) {
			return domain.Investment{}, &LimitError{Kind: ErrSupplyExceeded, Limit: campaign.TokenStats.TotalSupply, Attempted: newSold}
		}
	}

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *InvestmentService) ListByCampaign(ctx context.Context, campaignID uint) ([]domain.Investment, error) {
	investments, err := s.repo.FindByCampaignID(ctx, campaignID, 100)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByCampaignID -> %w", err)
	}

	return investments, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository"
)

var (
	ErrNoInvestments          = repository.ErrNoInvestments
	ErrNothingToDistribute    = repository.ErrNothingToDistribute
	ErrDividendExceedsRaised  = repository.ErrDividendExceedsRaised
	ErrDividendNotFound       = repository.ErrDividendNotFound
	ErrClaimNotFound          = repository.ErrClaimNotFound
	ErrDividendAlreadyClaimed = repository.ErrDividendAlreadyClaimed
)

type DividendRepository interface {
	Declare(ctx context.Context, dividend domain.Dividend) (domain.Dividend, error)
	Claim(ctx context.Context, dividendID, userID uint, settlementRef string) (domain.DividendClaim, error)
	FindByCampaignID(ctx context.Context, campaignID uint) ([]domain.Dividend, error)
	FindClaims(ctx context.Context, dividendID uint) ([]domain.DividendClaim, error)
	FindClaimsByUser(ctx context.Context, dividendIDs []uint, userID uint) ([]domain.DividendClaim, error)
}

type DividendService struct {
	repo      DividendRepository
	campaigns CampaignReader
}

func NewDividendService(repo DividendRepository, campaigns CampaignReader) *DividendService {
	return &DividendService{
		repo:      repo,
		campaigns: campaigns,
	}
}

// Declare freezes the campaign's ownership snapshot and materializes one
// claim per holder, summing exactly to the declared total. Every call
// creates a new distribution event; callers deduplicate intents through
// the period label they control.
func (s *DividendService) Declare(ctx context.Context, dividend domain.Dividend) (domain.Dividend, error) {
	if !dividend.TotalAmount.IsPositive() {
		return domain.Dividend{}, ErrInvalidAmount
	}

	campaign, err := s.campaigns.GetByID(ctx, dividend.CampaignID)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			return domain.Dividend{}, ErrCampaignNotFound
		}
		return domain.Dividend{}, fmt.Errorf("s.campaigns.GetByID -> %w", err)
	}

	if dividend.TotalAmount.GreaterThan(campaign.TotalRaised) {
		return domain.Dividend{}, &LimitError{Kind: ErrDividendExceedsRaised, Limit: campaign.TotalRaised, Attempted: dividend.TotalAmount}
	}

	dividend.DeclaredAt = time.Now()

	declared, err := s.repo.Declare(ctx, dividend)
	if err != nil {
		return domain.Dividend{}, fmt.Errorf("s.repo.Declare -> %w", err)
	}

	return declared, nil
}

// Claim settles the holder's share of one dividend exactly once.
func (s *DividendService) Claim(ctx context.Context, dividendID, userID uint, settlementRef string) (domain.DividendClaim, error) {
	claim, err := s.repo.Claim(ctx, dividendID, userID, settlementRef)
	if err != nil {
		return domain.DividendClaim{}, fmt.Errorf("s.repo.Claim -> %w", err)
	}

	return claim, nil
}

// ListByCampaign returns the campaign's dividends, newest first. When
// userID is non-zero each dividend carries that user's claim so callers
// can show the claim state.
func (s *DividendService) ListByCampaign(ctx context.Context, campaignID, userID uint) ([]domain.Dividend, error) {
	dividends, err := s.repo.FindByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByCampaignID -> %w", err)
	}

	if userID == 0 || len(dividends) == 0 {
		return dividends, nil
	}

	ids := make([]uint, len(dividends))
	for i, d := range dividends {
		ids[i] = d.ID
	}

	claims, err := s.repo.FindClaimsByUser(ctx, ids, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindClaimsByUser -> %w", err)
	}

	byDividend := make(map[uint]domain.DividendClaim, len(claims))
	for _, c := range claims {
		byDividend[c.DividendID] = c
	}

	for i := range dividends {
		if claim, ok := byDividend[dividends[i].ID]; ok {
			dividends[i].Claims = []domain.DividendClaim{claim}
		}
	}

	return dividends, nil
}

func (s *DividendService) GetClaims(ctx context.Context, dividendID uint) ([]domain.DividendClaim, error) {
	claims, err := s.repo.FindClaims(ctx, dividendID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindClaims -> %w", err)
	}

	return claims, nil
}

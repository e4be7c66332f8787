package repository

import (
	"context"
	"fmt"

	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository/dao"
)

var (
	ErrNoInvestments          = dao.ErrNoInvestments
	ErrNothingToDistribute    = dao.ErrNothingToDistribute
	ErrDividendExceedsRaised  = dao.ErrDividendExceedsRaised
	ErrDividendNotFound       = dao.ErrDividendNotFound
	ErrClaimNotFound          = dao.ErrClaimNotFound
	ErrDividendAlreadyClaimed = dao.ErrDividendAlreadyClaimed
)

type DividendDAO interface {
	Declare(ctx context.Context, div dao.Dividend) (dao.Dividend, error)
	Claim(ctx context.Context, dividendID, userID uint, settlementRef *string) (dao.DividendClaim, error)
	FindByCampaignID(ctx context.Context, campaignID uint) ([]dao.Dividend, error)
	FindClaims(ctx context.Context, dividendID uint) ([]dao.DividendClaim, error)
	FindClaimsByUser(ctx context.Context, dividendIDs []uint, userID uint) ([]dao.DividendClaim, error)
}

type DividendRepository struct {
	dao DividendDAO
}

func NewDividendRepository(dao DividendDAO) *DividendRepository {
	return &DividendRepository{
		dao: dao,
	}
}

func dividendDomainToDAO(d domain.Dividend) dao.Dividend {
	daoDividend := dao.Dividend{
		ID:          d.ID,
		CampaignID:  d.CampaignID,
		PeriodLabel: d.PeriodLabel,
		TotalAmount: d.TotalAmount,
		DeclaredAt:  d.DeclaredAt,
	}

	if d.SettlementRef != "" {
		ref := d.SettlementRef
		daoDividend.SettlementRef = &ref
	}

	return daoDividend
}

func dividendDAOToDomain(d dao.Dividend) domain.Dividend {
	dividend := domain.Dividend{
		ID:          d.ID,
		CampaignID:  d.CampaignID,
		PeriodLabel: d.PeriodLabel,
		TotalAmount: d.TotalAmount,
		DeclaredAt:  d.DeclaredAt,
	}

	if d.SettlementRef != nil {
		dividend.SettlementRef = *d.SettlementRef
	}

	if len(d.Claims) > 0 {
		dividend.Claims = make([]domain.DividendClaim, len(d.Claims))
		for i, claim := range d.Claims {
			dividend.Claims[i] = claimDAOToDomain(claim)
		}
	}

	return dividend
}

func claimDAOToDomain(c dao.DividendClaim) domain.DividendClaim {
	claim := domain.DividendClaim{
		ID:         c.ID,
		DividendID: c.DividendID,
		UserID:     c.UserID,
		Amount:     c.Amount,
		Claimed:    c.Claimed,
		ClaimedAt:  c.ClaimedAt,
	}

	if c.SettlementRef != nil {
		claim.SettlementRef = *c.SettlementRef
	}

	return claim
}

func (r *DividendRepository) Declare(ctx context.Context, dividend domain.Dividend) (domain.Dividend, error) {
	declared, err := r.dao.Declare(ctx, dividendDomainToDAO(dividend))
	if err != nil {
		return domain.Dividend{}, fmt.Errorf("r.dao.Declare -> %w", err)
	}

	return dividendDAOToDomain(declared), nil
}

func (r *DividendRepository) Claim(ctx context.Context, dividendID, userID uint, settlementRef string) (domain.DividendClaim, error) {
	var refPtr *string
	if settlementRef != "" {
		refPtr = &settlementRef
	}

	claim, err := r.dao.Claim(ctx, dividendID, userID, refPtr)
	if err != nil {
		return domain.DividendClaim{}, fmt.Errorf("r.dao.Claim -> %w", err)
	}

	return claimDAOToDomain(claim), nil
}

func (r *DividendRepository) FindByCampaignID(ctx context.Context, campaignID uint) ([]domain.Dividend, error) {
	dividends, err := r.dao.FindByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCampaignID -> %w", err)
	}

	result := make([]domain.Dividend, len(dividends))
	for i, d := range dividends {
		result[i] = dividendDAOToDomain(d)
	}

	return result, nil
}

func (r *DividendRepository) FindClaims(ctx context.Context, dividendID uint) ([]domain.DividendClaim, error) {
	claims, err := r.dao.FindClaims(ctx, dividendID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindClaims -> %w", err)
	}

	result := make([]domain.DividendClaim, len(claims))
	for i, c := range claims {
		result[i] = claimDAOToDomain(c)
	}

	return result, nil
}

func (r *DividendRepository) FindClaimsByUser(ctx context.Context, dividendIDs []uint, userID uint) ([]domain.DividendClaim, error) {
	claims, err := r.dao.FindClaimsByUser(ctx, dividendIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindClaimsByUser -> %w", err)
	}

	result := make([]domain.DividendClaim, len(claims))
	for i, c := range claims {
		result[i] = claimDAOToDomain(c)
	}

	return result, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository/dao"
)

var (
	ErrCampaignClosed      = dao.ErrCampaignClosed
	ErrHardCapExceeded     = dao.ErrHardCapExceeded
	ErrSupplyExceeded      = dao.ErrSupplyExceeded
	ErrDuplicatePaymentRef = dao.ErrDuplicatePaymentRef
)

// LimitError is re-exported so callers can read the violated limit
// without importing the dao package.
type LimitError = dao.LimitError

type InvestmentDAO interface {
	Insert(ctx context.Context, inv dao.Investment) (dao.Investment, error)
	FindByCampaignID(ctx context.Context, campaignID uint, limit int) ([]dao.Investment, error)
}

type InvestmentRepository struct {
	dao InvestmentDAO
}

func NewInvestmentRepository(dao InvestmentDAO) *InvestmentRepository {
	return &InvestmentRepository{
		dao: dao,
	}
}

func investmentDomainToDAO(inv domain.Investment) dao.Investment {
	return dao.Investment{
		ID:            inv.ID,
		CampaignID:    inv.CampaignID,
		UserID:        inv.UserID,
		WalletAddress: inv.WalletAddress,
		PaymentRef:    inv.PaymentRef,
		AmountUSD:     inv.AmountUSD,
		TokenAmount:   inv.TokenAmount,
		Flagged:       inv.Flagged,
		CreatedAt:     inv.CreatedAt,
	}
}

func investmentDAOToDomain(inv dao.Investment) domain.Investment {
	return domain.Investment{
		ID:            inv.ID,
		CampaignID:    inv.CampaignID,
		UserID:        inv.UserID,
		WalletAddress: inv.WalletAddress,
		PaymentRef:    inv.PaymentRef,
		AmountUSD:     inv.AmountUSD,
		TokenAmount:   inv.TokenAmount,
		Flagged:       inv.Flagged,
		CreatedAt:     inv.CreatedAt,
	}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv domain.Investment) (domain.Investment, error) {
	created, err := r.dao.Insert(ctx, investmentDomainToDAO(inv))
	if err != nil {
		return domain.Investment{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return investmentDAOToDomain(created), nil
}

func (r *InvestmentRepository) FindByCampaignID(ctx context.Context, campaignID uint, limit int) ([]domain.Investment, error) {
	investments, err := r.dao.FindByCampaignID(ctx, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByCampaignID -> %w", err)
	}

	result := make([]domain.Investment, len(investments))
	for i, inv := range investments {
		result[i] = investmentDAOToDomain(inv)
	}

	return result, nil
}

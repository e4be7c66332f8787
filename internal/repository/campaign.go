package repository

import (
	"context"
	"fmt"

	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository/dao"
)

var ErrCampaignNotFound = dao.ErrCampaignNotFound

type CampaignDAO interface {
	Insert(ctx context.Context, campaign dao.Campaign) (dao.Campaign, error)
	FindByID(ctx context.Context, id uint) (dao.Campaign, error)
	FindAll(ctx context.Context, limit int) ([]dao.Campaign, error)
}

type CampaignRepository struct {
	dao CampaignDAO
}

func NewCampaignRepository(dao CampaignDAO) *CampaignRepository {
	return &CampaignRepository{
		dao: dao,
	}
}

func campaignDomainToDAO(c domain.Campaign) dao.Campaign {
	daoCampaign := dao.Campaign{
		ID:             c.ID,
		Title:          c.Title,
		Slug:           c.Slug,
		Description:    c.Description,
		Status:         string(c.Status),
		HardCap:        c.HardCap,
		TokenPriceUSD:  c.TokenPriceUSD,
		TotalRaised:    c.TotalRaised,
		TotalInvestors: c.TotalInvestors,
		ROIEstimatePct: c.ROIEstimatePct,
		StartsAt:       c.StartsAt,
		EndsAt:         c.EndsAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}

	if c.RiskLevel != "" {
		risk := c.RiskLevel
		daoCampaign.RiskLevel = &risk
	}

	if c.TokenStats != nil {
		daoCampaign.TokenStats = &dao.CampaignToken{
			CampaignID:   c.ID,
			TokenAddress: c.TokenStats.TokenAddress,
			ChainID:      c.TokenStats.ChainID,
			TotalSupply:  c.TokenStats.TotalSupply,
			SoldSupply:   c.TokenStats.SoldSupply,
			HoldersCount: c.TokenStats.HoldersCount,
		}
	}

	return daoCampaign
}

func campaignDAOToDomain(c dao.Campaign) domain.Campaign {
	campaign := domain.Campaign{
		ID:             c.ID,
		Title:          c.Title,
		Slug:           c.Slug,
		Description:    c.Description,
		Status:         domain.CampaignStatus(c.Status),
		HardCap:        c.HardCap,
		TokenPriceUSD:  c.TokenPriceUSD,
		TotalRaised:    c.TotalRaised,
		TotalInvestors: c.TotalInvestors,
		ROIEstimatePct: c.ROIEstimatePct,
		StartsAt:       c.StartsAt,
		EndsAt:         c.EndsAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}

	if c.RiskLevel != nil {
		campaign.RiskLevel = *c.RiskLevel
	}

	if c.TokenStats != nil {
		campaign.TokenStats = &domain.TokenStats{
			TokenAddress: c.TokenStats.TokenAddress,
			ChainID:      c.TokenStats.ChainID,
			TotalSupply:  c.TokenStats.TotalSupply,
			SoldSupply:   c.TokenStats.SoldSupply,
			HoldersCount: c.TokenStats.HoldersCount,
		}
	}

	return campaign
}

func (r *CampaignRepository) Create(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	created, err := r.dao.Insert(ctx, campaignDomainToDAO(campaign))
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return campaignDAOToDomain(created), nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uint) (domain.Campaign, error) {
	campaign, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return campaignDAOToDomain(campaign), nil
}

func (r *CampaignRepository) GetAll(ctx context.Context, limit int) ([]domain.Campaign, error) {
	campaigns, err := r.dao.FindAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	result := make([]domain.Campaign, len(campaigns))
	for i, c := range campaigns {
		result[i] = campaignDAOToDomain(c)
	}

	return result, nil
}

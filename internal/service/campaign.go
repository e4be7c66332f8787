package service

import (
	"context"
	"fmt"

	"github.com/tokenvest/tokenvest-api/internal/domain"
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	GetByID(ctx context.Context, id uint) (domain.Campaign, error)
	GetAll(ctx context.Context, limit int) ([]domain.Campaign, error)
}

type CampaignService struct {
	repo CampaignRepository
}

func NewCampaignService(repo CampaignRepository) *CampaignService {
	return &CampaignService{
		repo: repo,
	}
}

func (s *CampaignService) CreateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error) {
	if campaign.Status == "" {
		campaign.Status = domain.CampaignFunding
	}

	created, err := s.repo.Create(ctx, campaign)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *CampaignService) GetCampaign(ctx context.Context, id uint) (domain.Campaign, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return campaign, nil
}

func (s *CampaignService) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	campaigns, err := s.repo.GetAll(ctx, 50)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetAll -> %w", err)
	}

	return campaigns, nil
}

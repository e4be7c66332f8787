package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type Campaign struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Description string

	Status string `gorm:"not null;default:FUNDING"`

	HardCap       decimal.Decimal `gorm:"type:numeric(30,8);not null"`
	TokenPriceUSD decimal.Decimal `gorm:"type:numeric(30,8);not null"`
	TotalRaised   decimal.Decimal `gorm:"type:numeric(30,8);not null;default:0"`

	TotalInvestors int `gorm:"not null;default:0"`

	ROIEstimatePct *float64
	RiskLevel      *string
	StartsAt       *time.Time
	EndsAt         *time.Time

	TokenStats *CampaignToken `gorm:"foreignKey:CampaignID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CampaignToken struct {
	ID         uint `gorm:"primaryKey"`
	CampaignID uint `gorm:"uniqueIndex;not null"`

	TokenAddress string `gorm:"not null"`
	ChainID      int64  `gorm:"not null"`

	TotalSupply  decimal.Decimal `gorm:"type:numeric(30,8);not null"`
	SoldSupply   decimal.Decimal `gorm:"type:numeric(30,8);not null;default:0"`
	HoldersCount int             `gorm:"not null;default:0"`
}

type CampaignDAO struct {
	db *gorm.DB
}

func NewCampaignDAO(db *gorm.DB) *CampaignDAO {
	return &CampaignDAO{
		db: db,
	}
}

func (d *CampaignDAO) Insert(ctx context.Context, campaign Campaign) (Campaign, error) {
	result := d.db.WithContext(ctx).Create(&campaign)
	if result.Error != nil {
		return Campaign{}, result.Error
	}

	return campaign, nil
}

func (d *CampaignDAO) FindByID(ctx context.Context, id uint) (Campaign, error) {
	var campaign Campaign

	result := d.db.WithContext(ctx).Preload("TokenStats").First(&campaign, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Campaign{}, ErrCampaignNotFound
		}

		return Campaign{}, result.Error
	}

	return campaign, nil
}

func (d *CampaignDAO) FindAll(ctx context.Context, limit int) ([]Campaign, error) {
	var campaigns []Campaign

	result := d.db.WithContext(ctx).
		Preload("TokenStats").
		Order("created_at desc").
		Limit(limit).
		Find(&campaigns)
	if result.Error != nil {
		return nil, result.Error
	}

	return campaigns, nil
}

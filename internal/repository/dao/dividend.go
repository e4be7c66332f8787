package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tokenvest/tokenvest-api/internal/domain"
)

var (
	ErrNoInvestments          = errors.New("campaign has no investments to distribute against")
	ErrNothingToDistribute    = errors.New("total invested token balance is zero")
	ErrDividendExceedsRaised  = errors.New("dividend exceeds total raised")
	ErrDividendNotFound       = errors.New("dividend not found")
	ErrClaimNotFound          = errors.New("dividend claim not found")
	ErrDividendAlreadyClaimed = errors.New("dividend already claimed")
)

type Dividend struct {
	ID uint `gorm:"primaryKey"`

	CampaignID  uint   `gorm:"not null;index"`
	PeriodLabel string `gorm:"not null"`

	TotalAmount   decimal.Decimal `gorm:"type:numeric(30,8);not null"`
	SettlementRef *string

	DeclaredAt time.Time `gorm:"not null"`

	Claims []DividendClaim `gorm:"foreignKey:DividendID"`
}

type DividendClaim struct {
	ID uint `gorm:"primaryKey"`

	DividendID uint `gorm:"not null;uniqueIndex:idx_dividend_claims_dividend_user"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_dividend_claims_dividend_user"`

	Amount decimal.Decimal `gorm:"type:numeric(30,8);not null"`

	Claimed       bool `gorm:"not null;default:false"`
	ClaimedAt     *time.Time
	SettlementRef *string
}

type DividendDAO struct {
	db *gorm.DB
}

func NewDividendDAO(db *gorm.DB) *DividendDAO {
	return &DividendDAO{
		db: db,
	}
}

// Declare snapshots the campaign's ownership and materializes the
// dividend with one claim per distinct holder, all in one transaction.
// The snapshot read and the claim inserts share the transaction, so a
// concurrent admission cannot slip between computation and
// materialization. Claim amounts sum to the declared total exactly.
func (d *DividendDAO) Declare(ctx context.Context, div Dividend) (Dividend, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign Campaign
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&campaign, div.CampaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}

		if div.TotalAmount.GreaterThan(campaign.TotalRaised) {
			return &LimitError{Kind: ErrDividendExceedsRaised, Limit: campaign.TotalRaised, Attempted: div.TotalAmount}
		}

		var investments []Investment
		if err := tx.Where("campaign_id = ?", div.CampaignID).
			Order("id asc").
			Find(&investments).Error; err != nil {
			return err
		}
		if len(investments) == 0 {
			return ErrNoInvestments
		}

		balances := make(map[uint]decimal.Decimal)
		order := make([]uint, 0, len(investments))
		for _, inv := range investments {
			if _, seen := balances[inv.UserID]; !seen {
				order = append(order, inv.UserID)
			}
			balances[inv.UserID] = balances[inv.UserID].Add(inv.TokenAmount)
		}

		holders := make([]domain.HolderBalance, 0, len(order))
		for _, userID := range order {
			holders = append(holders, domain.HolderBalance{UserID: userID, Tokens: balances[userID]})
		}

		shares, err := domain.SplitDividend(div.TotalAmount, holders)
		if err != nil {
			if errors.Is(err, domain.ErrNoTokens) {
				return ErrNothingToDistribute
			}
			return err
		}

		if err := tx.Create(&div).Error; err != nil {
			return err
		}

		claims := make([]DividendClaim, len(shares))
		for i, share := range shares {
			claims[i] = DividendClaim{
				DividendID: div.ID,
				UserID:     share.UserID,
				Amount:     share.Amount,
			}
		}
		if err := tx.Create(&claims).Error; err != nil {
			return err
		}
		div.Claims = claims

		if campaign.Status != string(domain.CampaignClosed) && campaign.Status != string(domain.CampaignArchived) {
			if err := tx.Model(&Campaign{}).
				Where("id = ?", div.CampaignID).
				Update("status", string(domain.CampaignDividendsDeclared)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return Dividend{}, err
	}

	return div, nil
}

// Claim marks the holder's claim as settled exactly once. The row is
// locked so two concurrent settlements cannot both pass the claimed
// check.
func (d *DividendDAO) Claim(ctx context.Context, dividendID, userID uint, settlementRef *string) (DividendClaim, error) {
	var claim DividendClaim

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("dividend_id = ? AND user_id = ?", dividendID, userID).
			First(&claim).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClaimNotFound
			}
			return err
		}

		if claim.Claimed {
			return ErrDividendAlreadyClaimed
		}

		now := time.Now()
		claim.Claimed = true
		claim.ClaimedAt = &now
		claim.SettlementRef = settlementRef

		return tx.Model(&DividendClaim{}).
			Where("id = ?", claim.ID).
			Updates(map[string]interface{}{
				"claimed":        true,
				"claimed_at":     now,
				"settlement_ref": settlementRef,
			}).Error
	})
	if err != nil {
		return DividendClaim{}, err
	}

	return claim, nil
}

func (d *DividendDAO) FindByCampaignID(ctx context.Context, campaignID uint) ([]Dividend, error) {
	var dividends []Dividend

	result := d.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("declared_at desc").
		Find(&dividends)
	if result.Error != nil {
		return nil, result.Error
	}

	return dividends, nil
}

func (d *DividendDAO) FindClaims(ctx context.Context, dividendID uint) ([]DividendClaim, error) {
	var exists int64
	if err := d.db.WithContext(ctx).Model(&Dividend{}).
		Where("id = ?", dividendID).
		Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrDividendNotFound
	}

	var claims []DividendClaim
	result := d.db.WithContext(ctx).
		Where("dividend_id = ?", dividendID).
		Order("user_id asc").
		Find(&claims)
	if result.Error != nil {
		return nil, result.Error
	}

	return claims, nil
}

func (d *DividendDAO) FindClaimsByUser(ctx context.Context, dividendIDs []uint, userID uint) ([]DividendClaim, error) {
	if len(dividendIDs) == 0 {
		return nil, nil
	}

	var claims []DividendClaim
	result := d.db.WithContext(ctx).
		Where("dividend_id IN ? AND user_id = ?", dividendIDs, userID).
		Find(&claims)
	if result.Error != nil {
		return nil, result.Error
	}

	return claims, nil
}

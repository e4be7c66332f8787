package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tokenvest/tokenvest-api/internal/domain"
)

var (
	ErrCampaignClosed      = errors.New("campaign is closed for investment")
	ErrHardCapExceeded     = errors.New("investment exceeds campaign hard cap")
	ErrSupplyExceeded      = errors.New("investment exceeds campaign token supply")
	ErrDuplicatePaymentRef = errors.New("payment reference already registered")
)

// LimitError carries the violated limit and the attempted value so the
// caller can surface both.
type LimitError struct {
	Kind      error
	Limit     decimal.Decimal
	Attempted decimal.Decimal
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%v (limit %v, attempted %v)", e.Kind, e.Limit, e.Attempted)
}

func (e *LimitError) Unwrap() error {
	return e.Kind
}

type Investment struct {
	ID uint `gorm:"primaryKey"`

	CampaignID uint `gorm:"not null;index"`
	UserID     uint `gorm:"not null;index"`

	WalletAddress string `gorm:"not null"`
	PaymentRef    string `gorm:"uniqueIndex;not null"`

	AmountUSD   decimal.Decimal `gorm:"type:numeric(30,8);not null"`
	TokenAmount decimal.Decimal `gorm:"type:numeric(30,8);not null"`

	Flagged bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
}

type InvestmentDAO struct {
	db *gorm.DB
}

func NewInvestmentDAO(db *gorm.DB) *InvestmentDAO {
	return &InvestmentDAO{
		db: db,
	}
}

// Insert admits one investment as a single atomic unit. The campaign row
// is locked and the hard cap, token supply and payment reference are
// re-validated against committed state before the row insert and the
// aggregate increments, so two concurrent admissions cannot both pass an
// over-limit check.
func (d *InvestmentDAO) Insert(ctx context.Context, inv Investment) (Investment, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign Campaign
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&campaign, inv.CampaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}

		if campaign.Status == string(domain.CampaignClosed) || campaign.Status == string(domain.CampaignArchived) {
			return ErrCampaignClosed
		}

		newTotalRaised := campaign.TotalRaised.Add(inv.AmountUSD)
		if newTotalRaised.GreaterThan(campaign.HardCap) {
			return &LimitError{Kind: ErrHardCapExceeded, Limit: campaign.HardCap, Attempted: newTotalRaised}
		}

		var stats CampaignToken
		hasStats := true
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("campaign_id = ?", inv.CampaignID).
			First(&stats).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hasStats = false
		}

		var newSoldSupply decimal.Decimal
		if hasStats {
			newSoldSupply = stats.SoldSupply.Add(inv.TokenAmount)
			if newSoldSupply.GreaterThan(stats.TotalSupply) {
				return &LimitError{Kind: ErrSupplyExceeded, Limit: stats.TotalSupply, Attempted: newSoldSupply}
			}
		}

		var duplicates int64
		if err := tx.Model(&Investment{}).
			Where("payment_ref = ?", inv.PaymentRef).
			Count(&duplicates).Error; err != nil {
			return err
		}
		if duplicates > 0 {
			return ErrDuplicatePaymentRef
		}

		if err := tx.Create(&inv).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return ErrDuplicatePaymentRef
			}
			return err
		}

		var prior int64
		if err := tx.Model(&Investment{}).
			Where("campaign_id = ? AND user_id = ? AND id <> ?", inv.CampaignID, inv.UserID, inv.ID).
			Count(&prior).Error; err != nil {
			return err
		}
		firstInvestment := prior == 0

		campaignUpdates := map[string]interface{}{
			"total_raised": newTotalRaised,
		}
		if firstInvestment {
			campaignUpdates["total_investors"] = campaign.TotalInvestors + 1
		}
		if err := tx.Model(&Campaign{}).
			Where("id = ?", inv.CampaignID).
			Updates(campaignUpdates).Error; err != nil {
			return err
		}

		if hasStats {
			statsUpdates := map[string]interface{}{
				"sold_supply": newSoldSupply,
			}
			if firstInvestment {
				statsUpdates["holders_count"] = stats.HoldersCount + 1
			}
			if err := tx.Model(&CampaignToken{}).
				Where("campaign_id = ?", inv.CampaignID).
				Updates(statsUpdates).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return Investment{}, err
	}

	return inv, nil
}

func (d *InvestmentDAO) FindByCampaignID(ctx context.Context, campaignID uint, limit int) ([]Investment, error) {
	var investments []Investment

	result := d.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at desc").
		Limit(limit).
		Find(&investments)
	if result.Error != nil {
		return nil, result.Error
	}

	return investments, nil
}

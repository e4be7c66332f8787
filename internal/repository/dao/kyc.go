package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tokenvest/tokenvest-api/internal/domain"
)

var (
	ErrIllegalTransition = errors.New("illegal KYC status transition")
	ErrSessionNotFound   = errors.New("KYC provider session not found")
	ErrInvalidKYCStatus  = errors.New("unknown KYC status")
)

// TransitionError reports the rejected from/to pair.
type TransitionError struct {
	From domain.KYCStatus
	To   domain.KYCStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %v -> %v not allowed", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

type KYCStatusHistory struct {
	ID uint `gorm:"primaryKey"`

	UserID     uint   `gorm:"not null;index"`
	FromStatus string `gorm:"not null"`
	ToStatus   string `gorm:"not null"`
	Reason     *string

	CreatedAt time.Time `gorm:"not null"`
}

type KYCFile struct {
	ID uint `gorm:"primaryKey"`

	UserID     uint   `gorm:"not null;index"`
	Type       string `gorm:"not null"`
	StorageKey string `gorm:"not null"`
	HashSHA256 string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

type AuditLog struct {
	ID uint `gorm:"primaryKey"`

	UserID   uint   `gorm:"not null;index"`
	Action   string `gorm:"not null"`
	Entity   string `gorm:"not null"`
	EntityID uint   `gorm:"not null"`

	Meta datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null"`
}

type KYCDAO struct {
	db *gorm.DB
}

func NewKYCDAO(db *gorm.DB) *KYCDAO {
	return &KYCDAO{
		db: db,
	}
}

// ChangeStatus applies one legal transition, appending the history and
// audit records in the same transaction as the status mutation.
func (d *KYCDAO) ChangeStatus(ctx context.Context, userID uint, target domain.KYCStatus, reason string) (User, error) {
	var user User

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		return changeStatusTx(tx, &user, target, reason)
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// OpenProviderSession records the external verification session and moves
// the user from PENDING to DOCS_REQUIRED atomically.
func (d *KYCDAO) OpenProviderSession(ctx context.Context, userID uint, sessionID string) (User, error) {
	var user User

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := tx.Model(&User{}).
			Where("id = ?", userID).
			Update("kyc_session_id", sessionID).Error; err != nil {
			return err
		}
		user.KYCSessionID = &sessionID

		return changeStatusTx(tx, &user, domain.KYCDocsRequired, "session created")
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

func changeStatusTx(tx *gorm.DB, user *User, target domain.KYCStatus, reason string) error {
	if !target.IsValid() {
		return ErrInvalidKYCStatus
	}

	from := domain.KYCStatus(user.KYCStatus)
	if !from.CanTransitionTo(target) {
		return &TransitionError{From: from, To: target}
	}

	now := time.Now()
	if err := tx.Model(&User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"kyc_status":     string(target),
			"kyc_updated_at": now,
		}).Error; err != nil {
		return err
	}

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	history := KYCStatusHistory{
		UserID:     user.ID,
		FromStatus: string(from),
		ToStatus:   string(target),
		Reason:     reasonPtr,
	}
	if err := tx.Create(&history).Error; err != nil {
		return err
	}

	meta, err := json.Marshal(map[string]string{
		"from":   string(from),
		"to":     string(target),
		"reason": reason,
	})
	if err != nil {
		return err
	}
	audit := AuditLog{
		UserID:   user.ID,
		Action:   "KYC_STATUS_CHANGE",
		Entity:   "User",
		EntityID: user.ID,
		Meta:     datatypes.JSON(meta),
	}
	if err := tx.Create(&audit).Error; err != nil {
		return err
	}

	user.KYCStatus = string(target)
	user.KYCUpdatedAt = now

	return nil
}

func (d *KYCDAO) FindBySessionID(ctx context.Context, sessionID string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "kyc_session_id = ?", sessionID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrSessionNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *KYCDAO) InsertFile(ctx context.Context, file KYCFile) (KYCFile, error) {
	result := d.db.WithContext(ctx).Create(&file)
	if result.Error != nil {
		return KYCFile{}, result.Error
	}

	return file, nil
}

func (d *KYCDAO) FindHistory(ctx context.Context, userID uint) ([]KYCStatusHistory, error) {
	var history []KYCStatusHistory

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&history)
	if result.Error != nil {
		return nil, result.Error
	}

	return history, nil
}

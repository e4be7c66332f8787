package repository

import (
	"context"
	"fmt"

	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository/dao"
)

var (
	ErrIllegalTransition = dao.ErrIllegalTransition
	ErrSessionNotFound   = dao.ErrSessionNotFound
	ErrInvalidKYCStatus  = dao.ErrInvalidKYCStatus
)

// TransitionError is re-exported so callers can read the rejected
// from/to pair without importing the dao package.
type TransitionError = dao.TransitionError

type KYCDAO interface {
	ChangeStatus(ctx context.Context, userID uint, target domain.KYCStatus, reason string) (dao.User, error)
	OpenProviderSession(ctx context.Context, userID uint, sessionID string) (dao.User, error)
	FindBySessionID(ctx context.Context, sessionID string) (dao.User, error)
	InsertFile(ctx context.Context, file dao.KYCFile) (dao.KYCFile, error)
	FindHistory(ctx context.Context, userID uint) ([]dao.KYCStatusHistory, error)
}

type KYCRepository struct {
	dao KYCDAO
}

func NewKYCRepository(dao KYCDAO) *KYCRepository {
	return &KYCRepository{
		dao: dao,
	}
}

func (r *KYCRepository) ChangeStatus(ctx context.Context, userID uint, target domain.KYCStatus, reason string) (domain.User, error) {
	user, err := r.dao.ChangeStatus(ctx, userID, target, reason)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.ChangeStatus -> %w", err)
	}

	return userDAOToDomain(user), nil
}

func (r *KYCRepository) OpenProviderSession(ctx context.Context, userID uint, sessionID string) (domain.User, error) {
	user, err := r.dao.OpenProviderSession(ctx, userID, sessionID)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.OpenProviderSession -> %w", err)
	}

	return userDAOToDomain(user), nil
}

func (r *KYCRepository) FindBySessionID(ctx context.Context, sessionID string) (domain.User, error) {
	user, err := r.dao.FindBySessionID(ctx, sessionID)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindBySessionID -> %w", err)
	}

	return userDAOToDomain(user), nil
}

func (r *KYCRepository) AddFile(ctx context.Context, file domain.KYCFile) (domain.KYCFile, error) {
	created, err := r.dao.InsertFile(ctx, dao.KYCFile{
		UserID:     file.UserID,
		Type:       file.Type,
		StorageKey: file.StorageKey,
		HashSHA256: file.HashSHA256,
	})
	if err != nil {
		return domain.KYCFile{}, fmt.Errorf("r.dao.InsertFile -> %w", err)
	}

	return domain.KYCFile{
		ID:         created.ID,
		UserID:     created.UserID,
		Type:       created.Type,
		StorageKey: created.StorageKey,
		HashSHA256: created.HashSHA256,
		CreatedAt:  created.CreatedAt,
	}, nil
}

func (r *KYCRepository) GetHistory(ctx context.Context, userID uint) ([]domain.KYCStatusChange, error) {
	history, err := r.dao.FindHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindHistory -> %w", err)
	}

	result := make([]domain.KYCStatusChange, len(history))
	for i, h := range history {
		change := domain.KYCStatusChange{
			ID:         h.ID,
			UserID:     h.UserID,
			FromStatus: domain.KYCStatus(h.FromStatus),
			ToStatus:   domain.KYCStatus(h.ToStatus),
			CreatedAt:  h.CreatedAt,
		}
		if h.Reason != nil {
			change.Reason = *h.Reason
		}
		result[i] = change
	}

	return result, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindByKYCStatuses(ctx context.Context, statuses []string, limit int) ([]dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func userDomainToDAO(u domain.User) dao.User {
	var sessionID *string
	if u.KYCSessionID != "" {
		sessionID = &u.KYCSessionID
	}

	return dao.User{
		ID:            u.ID,
		Email:         u.Email,
		Password:      u.Password,
		Name:          u.Name,
		Role:          u.Role,
		WalletAddress: u.WalletAddress,
		KYCStatus:     string(u.KYCStatus),
		KYCSessionID:  sessionID,
		KYCUpdatedAt:  u.KYCUpdatedAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func userDAOToDomain(u dao.User) domain.User {
	var sessionID string
	if u.KYCSessionID != nil {
		sessionID = *u.KYCSessionID
	}

	return domain.User{
		ID:            u.ID,
		Email:         u.Email,
		Password:      u.Password,
		Name:          u.Name,
		Role:          u.Role,
		WalletAddress: u.WalletAddress,
		KYCStatus:     domain.KYCStatus(u.KYCStatus),
		KYCSessionID:  sessionID,
		KYCUpdatedAt:  u.KYCUpdatedAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	daoUser := userDomainToDAO(user)
	if daoUser.KYCStatus == "" {
		daoUser.KYCStatus = string(domain.KYCPending)
	}
	if daoUser.KYCUpdatedAt.IsZero() {
		daoUser.KYCUpdatedAt = time.Now()
	}

	created, err := r.dao.Insert(ctx, daoUser)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return userDAOToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return userDAOToDomain(user), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return userDAOToDomain(user), nil
}

func (r *UserRepository) FindByKYCStatuses(ctx context.Context, statuses []domain.KYCStatus, limit int) ([]domain.User, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}

	users, err := r.dao.FindByKYCStatuses(ctx, raw, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByKYCStatuses -> %w", err)
	}

	result := make([]domain.User, len(users))
	for i, u := range users {
		result[i] = userDAOToDomain(u)
	}

	return result, nil
}

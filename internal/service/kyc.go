package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository"
)

var (
	ErrIllegalTransition = repository.ErrIllegalTransition
	ErrSessionNotFound   = repository.ErrSessionNotFound
	ErrInvalidKYCStatus  = repository.ErrInvalidKYCStatus
)

// TransitionError reports the rejected from/to pair.
type TransitionError = repository.TransitionError

type KYCRepository interface {
	ChangeStatus(ctx context.Context, userID uint, target domain.KYCStatus, reason string) (domain.User, error)
	OpenProviderSession(ctx context.Context, userID uint, sessionID string) (domain.User, error)
	FindBySessionID(ctx context.Context, sessionID string) (domain.User, error)
	AddFile(ctx context.Context, file domain.KYCFile) (domain.KYCFile, error)
	GetHistory(ctx context.Context, userID uint) ([]domain.KYCStatusChange, error)
}

type KYCUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByKYCStatuses(ctx context.Context, statuses []domain.KYCStatus, limit int) ([]domain.User, error)
}

type KYCService struct {
	repo  KYCRepository
	users KYCUserRepository
}

func NewKYCService(repo KYCRepository, users KYCUserRepository) *KYCService {
	return &KYCService{
		repo:  repo,
		users: users,
	}
}

// RequestSession opens a verification session at the external provider
// and moves the investor to DOCS_REQUIRED.
func (s *KYCService) RequestSession(ctx context.Context, userID uint) (string, error) {
	sessionID := fmt.Sprintf("prov_%v", uuid.NewString())

	if _, err := s.repo.OpenProviderSession(ctx, userID, sessionID); err != nil {
		return "", fmt.Errorf("s.repo.OpenProviderSession -> %w", err)
	}

	return sessionID, nil
}

// ChangeStatus applies one transition of the eligibility state machine.
// Illegal transitions fail with ErrIllegalTransition and leave no trace.
func (s *KYCService) ChangeStatus(ctx context.Context, userID uint, target domain.KYCStatus, reason string) (domain.User, error) {
	user, err := s.repo.ChangeStatus(ctx, userID, target, reason)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.ChangeStatus -> %w", err)
	}

	return user, nil
}

// ApplyProviderWebhook resolves the provider session and applies the
// reported status through the regular transition rules.
func (s *KYCService) ApplyProviderWebhook(ctx context.Context, sessionID string, status domain.KYCStatus, reason string) (domain.User, error) {
	user, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindBySessionID -> %w", err)
	}

	updated, err := s.repo.ChangeStatus(ctx, user.ID, status, reason)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.ChangeStatus -> %w", err)
	}

	return updated, nil
}

func (s *KYCService) AddFile(ctx context.Context, file domain.KYCFile) (domain.KYCFile, error) {
	created, err := s.repo.AddFile(ctx, file)
	if err != nil {
		return domain.KYCFile{}, fmt.Errorf("s.repo.AddFile -> %w", err)
	}

	return created, nil
}

func (s *KYCService) GetStatus(ctx context.Context, userID uint) (domain.KYCStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("s.users.FindByID -> %w", err)
	}

	return user.KYCStatus, nil
}

func (s *KYCService) GetHistory(ctx context.Context, userID uint) ([]domain.KYCStatusChange, error) {
	history, err := s.repo.GetHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.GetHistory -> %w", err)
	}

	return history, nil
}

// ListPendingReview returns investors whose verification is still in
// flight, oldest first.
func (s *KYCService) ListPendingReview(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.FindByKYCStatuses(ctx, []domain.KYCStatus{
		domain.KYCPending,
		domain.KYCDocsRequired,
		domain.KYCReview,
	}, 100)
	if err != nil {
		return nil, fmt.Errorf("s.users.FindByKYCStatuses -> %w", err)
	}

	return users, nil
}

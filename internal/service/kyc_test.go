package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenvest/tokenvest-api/internal/domain"
)

type fakeKYCRepo struct {
	users    map[uint]*domain.User
	sessions map[string]uint
	history  map[uint][]domain.KYCStatusChange
	files    []domain.KYCFile
}

func newFakeKYCRepo(users ...domain.User) *fakeKYCRepo {
	repo := &fakeKYCRepo{
		users:    make(map[uint]*domain.User),
		sessions: make(map[string]uint),
		history:  make(map[uint][]domain.KYCStatusChange),
	}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}

	return repo
}

func (f *fakeKYCRepo) ChangeStatus(_ context.Context, userID uint, target domain.KYCStatus, reason string) (domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	if !target.IsValid() {
		return domain.User{}, ErrInvalidKYCStatus
	}

	if !user.KYCStatus.CanTransitionTo(target) {
		return domain.User{}, &TransitionError{From: user.KYCStatus, To: target}
	}

	f.history[userID] = append(f.history[userID], domain.KYCStatusChange{
		UserID:     userID,
		FromStatus: user.KYCStatus,
		ToStatus:   target,
		Reason:     reason,
		CreatedAt:  time.Now(),
	})
	user.KYCStatus = target
	user.KYCUpdatedAt = time.Now()

	return *user, nil
}

func (f *fakeKYCRepo) OpenProviderSession(ctx context.Context, userID uint, sessionID string) (domain.User, error) {
	user, err := f.ChangeStatus(ctx, userID, domain.KYCDocsRequired, "session created")
	if err != nil {
		return domain.User{}, err
	}

	f.sessions[sessionID] = userID
	f.users[userID].KYCSessionID = sessionID

	return user, nil
}

func (f *fakeKYCRepo) FindBySessionID(_ context.Context, sessionID string) (domain.User, error) {
	userID, ok := f.sessions[sessionID]
	if !ok {
		return domain.User{}, ErrSessionNotFound
	}

	return *f.users[userID], nil
}

func (f *fakeKYCRepo) AddFile(_ context.Context, file domain.KYCFile) (domain.KYCFile, error) {
	file.ID = uint(len(f.files) + 1)
	f.files = append(f.files, file)

	return file, nil
}

func (f *fakeKYCRepo) GetHistory(_ context.Context, userID uint) ([]domain.KYCStatusChange, error) {
	return f.history[userID], nil
}

type fakeKYCUserRepo struct {
	repo *fakeKYCRepo
}

func (f *fakeKYCUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.repo.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	return *user, nil
}

func (f *fakeKYCUserRepo) FindByKYCStatuses(_ context.Context, statuses []domain.KYCStatus, _ int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.repo.users {
		for _, s := range statuses {
			if u.KYCStatus == s {
				out = append(out, *u)
				break
			}
		}
	}

	return out, nil
}

func pendingUser(id uint) domain.User {
	return domain.User{ID: id, Role: domain.RoleInvestor, KYCStatus: domain.KYCPending}
}

func TestKYCService_RequestSession(t *testing.T) {
	repo := newFakeKYCRepo(pendingUser(7))
	svc := NewKYCService(repo, &fakeKYCUserRepo{repo: repo})

	sessionID, err := svc.RequestSession(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sessionID, "prov_"), "got %v", sessionID)
	assert.Equal(t, domain.KYCDocsRequired, repo.users[7].KYCStatus)
	assert.Equal(t, sessionID, repo.users[7].KYCSessionID)
}

func TestKYCService_ApplyProviderWebhook(t *testing.T) {
	t.Run("applies the reported status", func(t *testing.T) {
		repo := newFakeKYCRepo(pendingUser(7))
		svc := NewKYCService(repo, &fakeKYCUserRepo{repo: repo})

		sessionID, err := svc.RequestSession(context.Background(), 7)
		require.NoError(t, err)

		user, err := svc.ApplyProviderWebhook(context.Background(), sessionID, domain.KYCApproved, "documents verified")
		require.NoError(t, err)
		assert.Equal(t, domain.KYCApproved, user.KYCStatus)
	})

	t.Run("unknown session", func(t *testing.T) {
		repo := newFakeKYCRepo(pendingUser(7))
		svc := NewKYCService(repo, &fakeKYCUserRepo{repo: repo})

		_, err := svc.ApplyProviderWebhook(context.Background(), "prov_missing", domain.KYCApproved, "")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("illegal transition leaves the status untouched", func(t *testing.T) {
		user := pendingUser(7)
		user.KYCStatus = domain.KYCRevoked

		repo := newFakeKYCRepo(user)
		repo.sessions["prov_x"] = 7
		svc := NewKYCService(repo, &fakeKYCUserRepo{repo: repo})

		_, err := svc.ApplyProviderWebhook(context.Background(), "prov_x", domain.KYCApproved, "")
		require.ErrorIs(t, err, ErrIllegalTransition)

		var te *TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, domain.KYCRevoked, te.From)
		assert.Equal(t, domain.KYCApproved, te.To)

		assert.Equal(t, domain.KYCRevoked, repo.users[7].KYCStatus)
		assert.Empty(t, repo.history[7])
	})
}

func TestKYCService_ChangeStatus(t *testing.T) {
	repo := newFakeKYCRepo(pendingUser(7))
	svc := NewKYCService(repo, &fakeKYCUserRepo{repo: repo})

	user, err := svc.ChangeStatus(context.Background(), 7, domain.KYCReview, "manual review")
	require.NoError(t, err)
	assert.Equal(t, domain.KYCReview, user.KYCStatus)

	user, err = svc.ChangeStatus(context.Background(), 7, domain.KYCApproved, "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.KYCApproved, user.KYCStatus)

	history, err := svc.GetHistory(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.KYCPending, history[0].FromStatus)
	assert.Equal(t, domain.KYCReview, history[0].ToStatus)
	assert.Equal(t, domain.KYCReview, history[1].FromStatus)
	assert.Equal(t, domain.KYCApproved, history[1].ToStatus)
}

func TestKYCService_AddFile(t *testing.T) {
	repo := newFakeKYCRepo(pendingUser(7))
	svc := NewKYCService(repo, &fakeKYCUserRepo{repo: repo})

	file, err := svc.AddFile(context.Background(), domain.KYCFile{
		UserID:     7,
		Type:       "passport",
		StorageKey: "kyc/7/passport.pdf",
		HashSHA256: strings.Repeat("ab", 32),
	})
	require.NoError(t, err)
	assert.NotZero(t, file.ID)
}

func TestKYCService_ListPendingReview(t *testing.T) {
	approved := pendingUser(2)
	approved.KYCStatus = domain.KYCApproved

	repo := newFakeKYCRepo(pendingUser(1), approved)
	svc := NewKYCService(repo, &fakeKYCUserRepo{repo: repo})

	users, err := svc.ListPendingReview(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, uint(1), users[0].ID)
}

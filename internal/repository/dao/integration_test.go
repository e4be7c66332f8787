package dao_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tokenvest/tokenvest-api/internal/db"
	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/repository/dao"
)

// setupTestDB starts a throwaway postgres container. Gated behind
// INTEGRATION_TESTS so the default test run stays docker-free.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS to run docker-backed tests")
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)
	require.NoError(t, pool.Client.Ping())

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=tokenvest_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	_ = resource.Expire(180)

	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})

	url := fmt.Sprintf("postgres://test:secret@%v/tokenvest_test?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var gormDB *gorm.DB
	pool.MaxWait = 2 * time.Minute
	require.NoError(t, pool.Retry(func() error {
		var openErr error
		gormDB, openErr = db.OpenPostgresWithURL(url)
		return openErr
	}))

	return gormDB
}

func seedUser(t *testing.T, gormDB *gorm.DB, email, wallet string) dao.User {
	t.Helper()

	user, err := dao.NewUserDAO(gormDB).Insert(context.Background(), dao.User{
		Email:         email,
		Password:      "hashed",
		Name:          "Test User",
		Role:          domain.RoleInvestor,
		WalletAddress: wallet,
		KYCStatus:     string(domain.KYCApproved),
	})
	require.NoError(t, err)

	return user
}

func seedCampaign(t *testing.T, gormDB *gorm.DB, slug string, hardCap int64) dao.Campaign {
	t.Helper()

	campaign, err := dao.NewCampaignDAO(gormDB).Insert(context.Background(), dao.Campaign{
		Title:         "Test Campaign",
		Slug:          slug,
		Description:   "integration test campaign",
		Status:        string(domain.CampaignFunding),
		HardCap:       decimal.NewFromInt(hardCap),
		TokenPriceUSD: decimal.NewFromInt(1),
		TotalRaised:   decimal.Zero,
	})
	require.NoError(t, err)

	return campaign
}

func paymentRef(n byte) string {
	ref := "0x"
	for i := 0; i < 32; i++ {
		ref += fmt.Sprintf("%02x", n)
	}
	return ref
}

func TestInvestmentDAO_Insert(t *testing.T) {
	gormDB := setupTestDB(t)
	ctx := context.Background()

	user := seedUser(t, gormDB, "investor@example.com", "0x0000000000000000000000000000000000000001")
	campaign := seedCampaign(t, gormDB, "solar-fund", 1000)

	investmentDAO := dao.NewInvestmentDAO(gormDB)
	campaignDAO := dao.NewCampaignDAO(gormDB)

	t.Run("admission updates campaign aggregates", func(t *testing.T) {
		_, err := investmentDAO.Insert(ctx, dao.Investment{
			CampaignID:    campaign.ID,
			UserID:        user.ID,
			WalletAddress: user.WalletAddress,
			PaymentRef:    paymentRef(0x01),
			AmountUSD:     decimal.NewFromInt(600),
			TokenAmount:   decimal.NewFromInt(600),
		})
		require.NoError(t, err)

		updated, err := campaignDAO.FindByID(ctx, campaign.ID)
		require.NoError(t, err)
		assert.True(t, updated.TotalRaised.Equal(decimal.NewFromInt(600)), "raised %v", updated.TotalRaised)
		assert.Equal(t, 1, updated.TotalInvestors)
	})

	t.Run("duplicate payment reference is rejected", func(t *testing.T) {
		_, err := investmentDAO.Insert(ctx, dao.Investment{
			CampaignID:    campaign.ID,
			UserID:        user.ID,
			WalletAddress: user.WalletAddress,
			PaymentRef:    paymentRef(0x01),
			AmountUSD:     decimal.NewFromInt(10),
			TokenAmount:   decimal.NewFromInt(10),
		})
		assert.ErrorIs(t, err, dao.ErrDuplicatePaymentRef)
	})

	t.Run("over-cap admission is rejected with limit details", func(t *testing.T) {
		_, err := investmentDAO.Insert(ctx, dao.Investment{
			CampaignID:    campaign.ID,
			UserID:        user.ID,
			WalletAddress: user.WalletAddress,
			PaymentRef:    paymentRef(0x02),
			AmountUSD:     decimal.NewFromInt(500),
			TokenAmount:   decimal.NewFromInt(500),
		})
		require.ErrorIs(t, err, dao.ErrHardCapExceeded)

		var le *dao.LimitError
		require.ErrorAs(t, err, &le)
		assert.True(t, le.Limit.Equal(decimal.NewFromInt(1000)))
		assert.True(t, le.Attempted.Equal(decimal.NewFromInt(1100)))

		// The rejected admission must leave aggregates untouched.
		updated, err := campaignDAO.FindByID(ctx, campaign.ID)
		require.NoError(t, err)
		assert.True(t, updated.TotalRaised.Equal(decimal.NewFromInt(600)))
	})
}

func TestDividendDAO_DeclareAndClaim(t *testing.T) {
	gormDB := setupTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, gormDB, "alice@example.com", "0x0000000000000000000000000000000000000011")
	bob := seedUser(t, gormDB, "bob@example.com", "0x0000000000000000000000000000000000000012")
	campaign := seedCampaign(t, gormDB, "wind-fund", 100000)

	investmentDAO := dao.NewInvestmentDAO(gormDB)
	dividendDAO := dao.NewDividendDAO(gormDB)

	invest := func(user dao.User, ref string, tokens int64) {
		t.Helper()
		_, err := investmentDAO.Insert(ctx, dao.Investment{
			CampaignID:    campaign.ID,
			UserID:        user.ID,
			WalletAddress: user.WalletAddress,
			PaymentRef:    ref,
			AmountUSD:     decimal.NewFromInt(tokens),
			TokenAmount:   decimal.NewFromInt(tokens),
		})
		require.NoError(t, err)
	}

	invest(alice, paymentRef(0x21), 1000)
	invest(bob, paymentRef(0x22), 3000)

	declared, err := dividendDAO.Declare(ctx, dao.Dividend{
		CampaignID:  campaign.ID,
		PeriodLabel: "2026-Q2",
		TotalAmount: decimal.NewFromInt(400),
		DeclaredAt:  time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, declared.Claims, 2)

	t.Run("claims sum to the declared total", func(t *testing.T) {
		sum := decimal.Zero
		for _, c := range declared.Claims {
			sum = sum.Add(c.Amount)
		}
		assert.True(t, sum.Equal(decimal.NewFromInt(400)), "claims sum to %v", sum)
	})

	t.Run("campaign moves to dividends declared", func(t *testing.T) {
		updated, err := dao.NewCampaignDAO(gormDB).FindByID(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.CampaignDividendsDeclared), updated.Status)
	})

	t.Run("later investments do not change existing claims", func(t *testing.T) {
		invest(alice, paymentRef(0x23), 5000)

		claims, err := dividendDAO.FindClaims(ctx, declared.ID)
		require.NoError(t, err)
		require.Len(t, claims, 2)
		assert.True(t, claims[0].Amount.Equal(decimal.NewFromInt(100)), "got %v", claims[0].Amount)
		assert.True(t, claims[1].Amount.Equal(decimal.NewFromInt(300)), "got %v", claims[1].Amount)
	})

	t.Run("a claim settles exactly once", func(t *testing.T) {
		ref := "wire-1"
		claim, err := dividendDAO.Claim(ctx, declared.ID, alice.ID, &ref)
		require.NoError(t, err)
		assert.True(t, claim.Claimed)

		_, err = dividendDAO.Claim(ctx, declared.ID, alice.ID, &ref)
		assert.ErrorIs(t, err, dao.ErrDividendAlreadyClaimed)
	})
}

func TestKYCDAO_ChangeStatus(t *testing.T) {
	gormDB := setupTestDB(t)
	ctx := context.Background()

	user := seedUser(t, gormDB, "kyc@example.com", "0x0000000000000000000000000000000000000031")
	require.NoError(t, gormDB.Model(&dao.User{}).
		Where("id = ?", user.ID).
		Update("kyc_status", string(domain.KYCPending)).Error)

	kycDAO := dao.NewKYCDAO(gormDB)

	updated, err := kycDAO.ChangeStatus(ctx, user.ID, domain.KYCReview, "manual review")
	require.NoError(t, err)
	assert.Equal(t, string(domain.KYCReview), updated.KYCStatus)

	_, err = kycDAO.ChangeStatus(ctx, user.ID, domain.KYCDocsRequired, "")
	require.ErrorIs(t, err, dao.ErrIllegalTransition)

	history, err := kycDAO.FindHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(domain.KYCPending), history[0].FromStatus)
	assert.Equal(t, string(domain.KYCReview), history[0].ToStatus)
}

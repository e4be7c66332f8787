package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tokenvest/tokenvest-api/internal/api/handler/v1/request"
	"github.com/tokenvest/tokenvest-api/internal/api/handler/v1/response"
	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/service"
)

type InvestmentService interface {
	Invest(ctx context.Context, inv domain.Investment) (domain.Investment, error)
	ListByCampaign(ctx context.Context, campaignID uint) ([]domain.Investment, error)
}

type InvestmentHandler struct {
	svc  InvestmentService
	uSvc UserService
}

func NewInvestmentHandler(svc InvestmentService, uSvc UserService) *InvestmentHandler {
	return &InvestmentHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateInvestment godoc
// @Summary      Invest in a campaign
// @Description  Records one contribution against a campaign. The payment reference must be unique; retrying with the same reference is rejected as a duplicate.
// @Tags         investments
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateInvestmentRequest true "request body"
// @Success      201      {object}  domain.Investment
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /investments [post]
// @Security BearerAuth
func (h *InvestmentHandler) HandleCreateInvestment(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateInvestmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	amountUSD, err := decimal.NewFromString(req.AmountUSD)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid amount_usd: %w", err)))
		return
	}

	tokenAmount, err := decimal.NewFromString(req.TokenAmount)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid token_amount: %w", err)))
		return
	}

	created, err := h.svc.Invest(ctx.Request.Context(), domain.Investment{
		CampaignID:    req.CampaignID,
		UserID:        user.ID,
		WalletAddress: req.WalletAddress,
		PaymentRef:    req.PaymentRef,
		AmountUSD:     amountUSD,
		TokenAmount:   tokenAmount,
	})
	if err != nil {
		renderInvestError(ctx, req.CampaignID, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleListInvestments godoc
// @Summary      List investments of a campaign
// @Tags         investments
// @Produce      json
// @Param        campaignID  path      int  true  "Campaign ID"
// @Success      200         {array}   domain.Investment
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /campaigns/{campaignID}/investments [get]
// @Security BearerAuth
func (h *InvestmentHandler) HandleListInvestments(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	campaignID, err := parseUintParam(ctx, "campaignID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	investments, err := h.svc.ListByCampaign(ctx.Request.Context(), campaignID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListInvestments -> h.svc.ListByCampaign -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, investments)
}

func renderInvestError(ctx *gin.Context, campaignID uint, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		response.RenderErr(ctx, response.ErrValidation("INVALID_AMOUNT", service.ErrInvalidAmount))
	case errors.Is(err, service.ErrInvalidPaymentRef):
		response.RenderErr(ctx, response.ErrValidation("INVALID_PAYMENT_REFERENCE", service.ErrInvalidPaymentRef))
	case errors.Is(err, service.ErrInvestorNotEligible):
		response.RenderErr(ctx, response.ErrInvalidState("INVESTOR_NOT_ELIGIBLE", service.ErrInvestorNotEligible))
	case errors.Is(err, service.ErrCampaignNotFound):
		response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", campaignID))
	case errors.Is(err, service.ErrCampaignClosed):
		response.RenderErr(ctx, response.ErrInvalidState("CAMPAIGN_CLOSED", service.ErrCampaignClosed))
	case errors.Is(err, service.ErrHardCapExceeded):
		response.RenderErr(ctx, response.ErrConflict("HARD_CAP_EXCEEDED", err, limitDetails(err)))
	case errors.Is(err, service.ErrSupplyExceeded):
		response.RenderErr(ctx, response.ErrConflict("SUPPLY_EXCEEDED", err, limitDetails(err)))
	case errors.Is(err, service.ErrDuplicatePaymentRef):
		response.RenderErr(ctx, response.ErrConflict("DUPLICATE_PAYMENT_REFERENCE", service.ErrDuplicatePaymentRef, nil))
	default:
		err = fmt.Errorf("v1.HandleCreateInvestment -> h.svc.Invest -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

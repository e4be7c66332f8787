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
	"github.com/tokenvest/tokenvest-api/internal/api/middleware"
	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/service"
)

type DividendService interface {
	Declare(ctx context.Context, dividend domain.Dividend) (domain.Dividend, error)
	Claim(ctx context.Context, dividendID, userID uint, settlementRef string) (domain.DividendClaim, error)
	ListByCampaign(ctx context.Context, campaignID, userID uint) ([]domain.Dividend, error)
	GetClaims(ctx context.Context, dividendID uint) ([]domain.DividendClaim, error)
}

type DividendHandler struct {
	svc  DividendService
	uSvc UserService
}

func NewDividendHandler(svc DividendService, uSvc UserService) *DividendHandler {
	return &DividendHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleDeclareDividend godoc
// @Summary      Declare a dividend
// @Description  Declares a distribution over the campaign's current ownership snapshot and materializes one claim per holder. Only issuers and admins can declare.
// @Tags         dividends
// @Accept       json
// @Produce      json
// @Param        request  body      request.DeclareDividendRequest true "request body"
// @Success      201      {object}  domain.Dividend
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dividends [post]
// @Security BearerAuth
func (h *DividendHandler) HandleDeclareDividend(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if user.Role != domain.RoleIssuer && user.Role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an issuer", user.ID)))
		return
	}

	var req request.DeclareDividendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	totalAmount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid total_amount: %w", err)))
		return
	}

	declared, err := h.svc.Declare(ctx.Request.Context(), domain.Dividend{
		CampaignID:    req.CampaignID,
		PeriodLabel:   req.PeriodLabel,
		TotalAmount:   totalAmount,
		SettlementRef: req.SettlementRef,
	})
	if err != nil {
		renderDeclareError(ctx, req.CampaignID, err)
		return
	}

	ctx.JSON(http.StatusCreated, declared)
}

// HandleListDividends godoc
// @Summary      List dividends of a campaign
// @Description  Returns the campaign's dividends, newest first. When authenticated, each dividend carries the caller's own claim.
// @Tags         dividends
// @Produce      json
// @Param        campaignID  path      int  true  "Campaign ID"
// @Success      200         {array}   domain.Dividend
// @Failure      400         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /campaigns/{campaignID}/dividends [get]
func (h *DividendHandler) HandleListDividends(ctx *gin.Context) {
	campaignID, err := parseUintParam(ctx, "campaignID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	userID := ctx.GetUint(middleware.ContextKeyUserID)

	dividends, err := h.svc.ListByCampaign(ctx.Request.Context(), campaignID, userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListDividends -> h.svc.ListByCampaign -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, dividends)
}

// HandleClaimDividend godoc
// @Summary      Claim a dividend share
// @Description  Settles the caller's share of one dividend. A share can be claimed exactly once; repeat attempts fail.
// @Tags         dividends
// @Accept       json
// @Produce      json
// @Param        dividendID  path      int  true  "Dividend ID"
// @Param        request     body      request.ClaimDividendRequest false "request body"
// @Success      200         {object}  domain.DividendClaim
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      409         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /dividends/{dividendID}/claim [post]
// @Security BearerAuth
func (h *DividendHandler) HandleClaimDividend(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	dividendID, err := parseUintParam(ctx, "dividendID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.ClaimDividendRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
	}

	claim, err := h.svc.Claim(ctx.Request.Context(), dividendID, user.ID, req.SettlementRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClaimNotFound):
			response.RenderErr(ctx, response.ErrNotFound("claim", "dividendID", dividendID))
		case errors.Is(err, service.ErrDividendAlreadyClaimed):
			response.RenderErr(ctx, response.ErrConflict("ALREADY_CLAIMED", service.ErrDividendAlreadyClaimed, nil))
		default:
			err = fmt.Errorf("v1.HandleClaimDividend -> h.svc.Claim -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, claim)
}

// HandleGetClaims godoc
// @Summary      List claims of a dividend
// @Description  Returns every holder's claim for one dividend, ordered by holder. Only issuers and admins can list claims.
// @Tags         dividends
// @Produce      json
// @Param        dividendID  path      int  true  "Dividend ID"
// @Success      200         {array}   domain.DividendClaim
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /dividends/{dividendID}/claims [get]
// @Security BearerAuth
func (h *DividendHandler) HandleGetClaims(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if user.Role != domain.RoleIssuer && user.Role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an issuer", user.ID)))
		return
	}

	dividendID, err := parseUintParam(ctx, "dividendID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	claims, err := h.svc.GetClaims(ctx.Request.Context(), dividendID)
	if err != nil {
		if errors.Is(err, service.ErrDividendNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("dividend", "ID", dividendID))
			return
		}

		err = fmt.Errorf("v1.HandleGetClaims -> h.svc.GetClaims -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, claims)
}

func renderDeclareError(ctx *gin.Context, campaignID uint, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		response.RenderErr(ctx, response.ErrValidation("INVALID_AMOUNT", service.ErrInvalidAmount))
	case errors.Is(err, service.ErrCampaignNotFound):
		response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", campaignID))
	case errors.Is(err, service.ErrDividendExceedsRaised):
		response.RenderErr(ctx, response.ErrConflict("DIVIDEND_EXCEEDS_RAISED", err, limitDetails(err)))
	case errors.Is(err, service.ErrNoInvestments):
		response.RenderErr(ctx, response.ErrInvalidState("NO_INVESTMENTS", service.ErrNoInvestments))
	case errors.Is(err, service.ErrNothingToDistribute):
		response.RenderErr(ctx, response.ErrInvalidState("NOTHING_TO_DISTRIBUTE", service.ErrNothingToDistribute))
	default:
		err = fmt.Errorf("v1.HandleDeclareDividend -> h.svc.Declare -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tokenvest/tokenvest-api/internal/api/handler/v1/request"
	"github.com/tokenvest/tokenvest-api/internal/api/handler/v1/response"
	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/service"
)

type CampaignService interface {
	CreateCampaign(ctx context.Context, campaign domain.Campaign) (domain.Campaign, error)
	GetCampaign(ctx context.Context, id uint) (domain.Campaign, error)
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
}

type CampaignHandler struct {
	svc  CampaignService
	uSvc UserService
}

func NewCampaignHandler(svc CampaignService, uSvc UserService) *CampaignHandler {
	return &CampaignHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCreateCampaign godoc
// @Summary      Create a campaign
// @Description  Creates a new fundraising campaign. Only issuers and admins can create campaigns.
// @Tags         campaigns
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateCampaignRequest true "request body"
// @Success      201      {object}  domain.Campaign
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /campaigns [post]
// @Security BearerAuth
func (h *CampaignHandler) HandleCreateCampaign(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if user.Role != domain.RoleIssuer && user.Role != domain.RoleAdmin {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an issuer", user.ID)))
		return
	}

	var req request.CreateCampaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	campaign, err := buildCampaign(req)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateCampaign(ctx.Request.Context(), campaign)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateCampaign -> h.svc.CreateCampaign -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetCampaign godoc
// @Summary      Get one campaign
// @Tags         campaigns
// @Produce      json
// @Param        campaignID  path      int  true  "Campaign ID"
// @Success      200         {object}  domain.Campaign
// @Failure      400         {object}  response.Err
// @Failure      404         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /campaigns/{campaignID} [get]
func (h *CampaignHandler) HandleGetCampaign(ctx *gin.Context) {
	campaignID, err := parseUintParam(ctx, "campaignID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	campaign, err := h.svc.GetCampaign(ctx.Request.Context(), campaignID)
	if err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("campaign", "ID", campaignID))
			return
		}

		err = fmt.Errorf("v1.HandleGetCampaign -> h.svc.GetCampaign -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, campaign)
}

// HandleListCampaigns godoc
// @Summary      List campaigns
// @Tags         campaigns
// @Produce      json
// @Success      200  {array}   domain.Campaign
// @Failure      500  {object}  response.Err
// @Router       /campaigns [get]
func (h *CampaignHandler) HandleListCampaigns(ctx *gin.Context) {
	campaigns, err := h.svc.ListCampaigns(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListCampaigns -> h.svc.ListCampaigns -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, campaigns)
}

func buildCampaign(req request.CreateCampaignRequest) (domain.Campaign, error) {
	hardCap, err := decimal.NewFromString(req.HardCap)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("invalid hard_cap: %w", err)
	}

	tokenPrice, err := decimal.NewFromString(req.TokenPriceUSD)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("invalid token_price_usd: %w", err)
	}

	campaign := domain.Campaign{
		Title:          req.Title,
		Slug:           req.Slug,
		Description:    req.Description,
		HardCap:        hardCap,
		TokenPriceUSD:  tokenPrice,
		ROIEstimatePct: req.ROIEstimatePct,
		RiskLevel:      req.RiskLevel,
	}

	if req.StartsAt != "" {
		startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			return domain.Campaign{}, fmt.Errorf("invalid starts_at: %w", err)
		}
		campaign.StartsAt = &startsAt
	}

	if req.EndsAt != "" {
		endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
		if err != nil {
			return domain.Campaign{}, fmt.Errorf("invalid ends_at: %w", err)
		}
		campaign.EndsAt = &endsAt
	}

	if req.TokenStats != nil {
		totalSupply, err := decimal.NewFromString(req.TokenStats.TotalSupply)
		if err != nil {
			return domain.Campaign{}, fmt.Errorf("invalid total_supply: %w", err)
		}

		campaign.TokenStats = &domain.TokenStats{
			TokenAddress: req.TokenStats.TokenAddress,
			ChainID:      req.TokenStats.ChainID,
			TotalSupply:  totalSupply,
		}
	}

	return campaign, nil
}

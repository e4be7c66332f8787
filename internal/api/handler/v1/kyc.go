package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tokenvest/tokenvest-api/internal/api/handler/v1/request"
	"github.com/tokenvest/tokenvest-api/internal/api/handler/v1/response"
	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/service"
)

type KYCService interface {
	RequestSession(ctx context.Context, userID uint) (string, error)
	ChangeStatus(ctx context.Context, userID uint, target domain.KYCStatus, reason string) (domain.User, error)
	ApplyProviderWebhook(ctx context.Context, sessionID string, status domain.KYCStatus, reason string) (domain.User, error)
	AddFile(ctx context.Context, file domain.KYCFile) (domain.KYCFile, error)
	GetStatus(ctx context.Context, userID uint) (domain.KYCStatus, error)
	GetHistory(ctx context.Context, userID uint) ([]domain.KYCStatusChange, error)
	ListPendingReview(ctx context.Context) ([]domain.User, error)
}

type KYCHandler struct {
	svc  KYCService
	uSvc UserService
}

func NewKYCHandler(svc KYCService, uSvc UserService) *KYCHandler {
	return &KYCHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleRequestSession godoc
// @Summary      Request a verification session
// @Description  Opens a verification session at the external provider and moves the caller to DOCS_REQUIRED.
// @Tags         kyc
// @Produce      json
// @Success      201  {object}  response.KYCSessionResponse
// @Failure      401  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /kyc/session [post]
// @Security BearerAuth
func (h *KYCHandler) HandleRequestSession(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	sessionID, err := h.svc.RequestSession(ctx.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrIllegalTransition) {
			response.RenderErr(ctx, response.ErrInvalidState("ILLEGAL_TRANSITION", err))
			return
		}

		err = fmt.Errorf("v1.HandleRequestSession -> h.svc.RequestSession -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.KYCSessionResponse{
		SessionID: sessionID,
		Status:    domain.KYCDocsRequired,
	})
}

// HandleAddFile godoc
// @Summary      Register a verification document
// @Description  Stores the metadata of an uploaded verification document. The document itself lives in external storage.
// @Tags         kyc
// @Accept       json
// @Produce      json
// @Param        request  body      request.KYCFileRequest true "request body"
// @Success      201      {object}  domain.KYCFile
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /kyc/files [post]
// @Security BearerAuth
func (h *KYCHandler) HandleAddFile(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.KYCFileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	file, err := h.svc.AddFile(ctx.Request.Context(), domain.KYCFile{
		UserID:     user.ID,
		Type:       req.Type,
		StorageKey: req.StorageKey,
		HashSHA256: req.SHA256,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleAddFile -> h.svc.AddFile -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, file)
}

// HandleGetStatus godoc
// @Summary      Get own verification status
// @Tags         kyc
// @Produce      json
// @Success      200  {object}  response.KYCStatusResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /kyc/status [get]
// @Security BearerAuth
func (h *KYCHandler) HandleGetStatus(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, response.KYCStatusResponse{Status: user.KYCStatus})
}

// HandleWebhook godoc
// @Summary      Apply a provider verification result
// @Description  Resolves the provider session and applies the reported status through the regular transition rules.
// @Tags         kyc
// @Accept       json
// @Produce      json
// @Param        request  body      request.KYCWebhookRequest true "request body"
// @Success      200      {object}  response.KYCStatusResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /kyc/webhook [post]
func (h *KYCHandler) HandleWebhook(ctx *gin.Context) {
	var req request.KYCWebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	status := domain.KYCStatus(strings.ToUpper(req.Status))
	if !status.IsValid() {
		response.RenderErr(ctx, response.ErrValidation("INVALID_KYC_STATUS", fmt.Errorf("unknown status %q", req.Status)))
		return
	}

	user, err := h.svc.ApplyProviderWebhook(ctx.Request.Context(), req.SessionID, status, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("kyc session", "sessionID", req.SessionID))
		case errors.Is(err, service.ErrIllegalTransition):
			response.RenderErr(ctx, response.ErrInvalidState("ILLEGAL_TRANSITION", err))
		default:
			err = fmt.Errorf("v1.HandleWebhook -> h.svc.ApplyProviderWebhook -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.KYCStatusResponse{Status: user.KYCStatus})
}

// HandleListPending godoc
// @Summary      List investors pending verification
// @Tags         kyc
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/kyc/pending [get]
// @Security BearerAuth
func (h *KYCHandler) HandleListPending(ctx *gin.Context) {
	if respErr := h.requireAdmin(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	users, err := h.svc.ListPendingReview(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListPending -> h.svc.ListPendingReview -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleOverrideStatus godoc
// @Summary      Override an investor's verification status
// @Description  Applies one transition of the eligibility state machine on behalf of an admin. Illegal transitions are rejected and leave no trace.
// @Tags         kyc
// @Accept       json
// @Produce      json
// @Param        userID   path      int  true  "User ID"
// @Param        request  body      request.KYCOverrideRequest true "request body"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      422      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/kyc/{userID}/status [put]
// @Security BearerAuth
func (h *KYCHandler) HandleOverrideStatus(ctx *gin.Context) {
	if respErr := h.requireAdmin(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID, err := parseUintParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.KYCOverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	status := domain.KYCStatus(strings.ToUpper(req.Status))
	if !status.IsValid() {
		response.RenderErr(ctx, response.ErrValidation("INVALID_KYC_STATUS", fmt.Errorf("unknown status %q", req.Status)))
		return
	}

	user, err := h.svc.ChangeStatus(ctx.Request.Context(), userID, status, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "ID", userID))
		case errors.Is(err, service.ErrIllegalTransition):
			response.RenderErr(ctx, response.ErrInvalidState("ILLEGAL_TRANSITION", err))
		default:
			err = fmt.Errorf("v1.HandleOverrideStatus -> h.svc.ChangeStatus -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleGetHistory godoc
// @Summary      Get an investor's verification history
// @Tags         kyc
// @Produce      json
// @Param        userID  path      int  true  "User ID"
// @Success      200     {array}   domain.KYCStatusChange
// @Failure      400     {object}  response.Err
// @Failure      401     {object}  response.Err
// @Failure      403     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /admin/kyc/{userID}/history [get]
// @Security BearerAuth
func (h *KYCHandler) HandleGetHistory(ctx *gin.Context) {
	if respErr := h.requireAdmin(ctx); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID, err := parseUintParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	history, err := h.svc.GetHistory(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetHistory -> h.svc.GetHistory -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, history)
}

func (h *KYCHandler) requireAdmin(ctx *gin.Context) *response.Err {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		return respErr
	}

	if user.Role != domain.RoleAdmin {
		return response.ErrPermissionDenied(fmt.Errorf("user %v is not an admin", user.ID))
	}

	return nil
}

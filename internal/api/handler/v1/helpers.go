package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tokenvest/tokenvest-api/internal/api/handler/v1/response"
	"github.com/tokenvest/tokenvest-api/internal/api/middleware"
	"github.com/tokenvest/tokenvest-api/internal/domain"
	"github.com/tokenvest/tokenvest-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	raw, ok := ctx.Get(middleware.ContextKeyUserID)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("not authenticated"))
	}

	userID, ok := raw.(uint)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errors.New("invalid user in context"))
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(service.ErrUserNotFound)
		}

		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("getUserFromContext -> uSvc.GetUser -> %w", err))
	}

	return user, nil
}

func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %v %q", name, raw)
	}

	return uint(parsed), nil
}

// limitDetails extracts the violated limit and attempted value when err
// wraps a limit violation.
func limitDetails(err error) interface{} {
	var le *service.LimitError
	if errors.As(err, &le) {
		return gin.H{
			"limit":     le.Limit,
			"attempted": le.Attempted,
		}
	}

	return nil
}

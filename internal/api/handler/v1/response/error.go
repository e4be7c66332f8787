package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the error envelope every failing endpoint renders. Code is a
// stable machine-readable identifier; Message is for humans. Details
// carries extra context such as the violated limit and attempted value.
type Err struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

func RenderErr(ctx *gin.Context, err *Err) {
	if err.StatusCode >= http.StatusInternalServerError {
		zap.L().Error(err.Message, zap.String("code", err.Code))
	}

	ctx.JSON(err.StatusCode, err)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Code:       "WRONG_CREDENTIALS",
		Message:    err.Error(),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Code:       "PERMISSION_DENIED",
		Message:    err.Error(),
	}
}

func ErrNotFound(resource, key string, value interface{}) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%v with %v %v not found", resource, key, value),
	}
}

// ErrConflict renders a terminal business-rule violation with its stable
// code. Conflicts are never retried with the same input.
func ErrConflict(code string, err error, details interface{}) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		Code:       code,
		Message:    err.Error(),
		Details:    details,
	}
}

// ErrInvalidState renders a lifecycle-state rejection with its stable
// code.
func ErrInvalidState(code string, err error) *Err {
	return &Err{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       code,
		Message:    err.Error(),
	}
}

// ErrValidation renders an input-validation rejection with its stable
// code.
func ErrValidation(code string, err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Code:       code,
		Message:    err.Error(),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    err.Error(),
	}
}

package response

import (
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	RequestID  string `json:"request_id,omitempty"`
}

func NewErr(statusCode int, err error) *Err {
	return &Err{
		StatusCode: statusCode,
		Message:    err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err)
}

func ErrNotFound(err error) *Err {
	return NewErr(http.StatusNotFound, err)
}

func ErrConflict(err error) *Err {
	return NewErr(http.StatusConflict, err)
}

func ErrWrongCredentials(err error) *Err {
	return NewErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return NewErr(http.StatusForbidden, err)
}

func ErrInternalServerError(err error) *Err {
	return NewErr(http.StatusInternalServerError, err)
}

// RenderErr writes the error response and aborts the chain. Internal errors
// are logged with their full wrap chain but rendered opaque to the client.
func RenderErr(ctx *gin.Context, e *Err) {
	e.RequestID = requestid.Get(ctx)

	if e.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", e.RequestID),
			zap.String("path", ctx.FullPath()),
			zap.String("error", e.Message),
		)
		e.Message = "internal server error"
	}

	ctx.AbortWithStatusJSON(e.StatusCode, e)
}

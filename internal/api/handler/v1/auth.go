package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkstudio/studio-api/internal/api/handler/v1/request"
	"github.com/mkstudio/studio-api/internal/api/handler/v1/response"
	"github.com/mkstudio/studio-api/internal/config"
	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/pkg/jwthelper"
	"github.com/mkstudio/studio-api/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (domain.User, error)
	SetPassword(ctx context.Context, email, password string) error
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleLogin godoc
// @Summary      Login a user
// @Tags         auth
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrWrongCredentials) {
			response.RenderErr(ctx, response.ErrWrongCredentials(service.ErrWrongCredentials))

			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user.ID, user.Role, user.MemberID, ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleSetPassword godoc
// @Summary      Set the password from an invite token
// @Tags         auth
// @Produce      json
// @Param        request   body      request.SetPasswordRequest true "request body"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/set-password [post]
func (h *AuthHandler) HandleSetPassword(ctx *gin.Context) {
	req := request.SetPasswordRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	email, err := jwthelper.ParseInviteToken([]byte(h.conf.JWTSigningKey), req.Token)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(jwthelper.ErrInvalidToken))

		return
	}

	if err := h.svc.SetPassword(ctx.Request.Context(), email, req.Password); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrUserNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleSetPassword -> h.svc.SetPassword -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

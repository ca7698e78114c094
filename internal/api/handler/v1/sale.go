package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkstudio/studio-api/internal/api/handler/v1/request"
	"github.com/mkstudio/studio-api/internal/api/handler/v1/response"
	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/service"
)

type SaleService interface {
	RecordSale(ctx context.Context, cmd service.RecordSaleCommand) (domain.Sale, error)
	GetSale(ctx context.Context, id uint) (domain.Sale, error)
	GetSales(ctx context.Context) ([]domain.Sale, error)
}

type SaleHandler struct {
	svc SaleService
}

func NewSaleHandler(svc SaleService) *SaleHandler {
	return &SaleHandler{
		svc: svc,
	}
}

// HandleCreateSale godoc
// @Summary      Record a pack sale or a session credit
// @Tags         sales
// @Produce      json
// @Param        request   body      request.CreateSaleRequest true "request body"
// @Success      201      {object}   domain.Sale
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /sales [post]
func (h *SaleHandler) HandleCreateSale(ctx *gin.Context) {
	req := request.CreateSaleRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	sale, err := h.svc.RecordSale(ctx.Request.Context(), service.RecordSaleCommand{
		MemberID:       req.MemberID,
		Kind:           domain.SessionKind(req.SaleType),
		Quantity:       req.Quantity,
		CreditSessions: req.CreditSessions,
		PaymentMethod:  req.PaymentMethod,
		FamilyDiscount: req.FamilyDiscount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoMemberSelected),
			errors.Is(err, service.ErrInvalidKind),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrInvalidPaymentMethod):
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		case errors.Is(err, service.ErrMemberNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMemberNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleCreateSale -> h.svc.RecordSale -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, sale)
}

// HandleGetSales godoc
// @Summary      List all sales
// @Tags         sales
// @Produce      json
// @Success      200      {object}   []domain.Sale
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /sales [get]
func (h *SaleHandler) HandleGetSales(ctx *gin.Context) {
	sales, err := h.svc.GetSales(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetSales -> h.svc.GetSales -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, sales)
}

// HandleGetSale godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        saleID    path       int  true "sale ID"
// @Success      200      {object}   domain.Sale
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /sales/{saleID} [get]
func (h *SaleHandler) HandleGetSale(ctx *gin.Context) {
	raw := ctx.Param("saleID")
	saleID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid sale ID (%v)", raw)))

		return
	}

	sale, err := h.svc.GetSale(ctx.Request.Context(), uint(saleID))
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrSaleNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetSale -> h.svc.GetSale -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, sale)
}

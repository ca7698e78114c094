package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkstudio/studio-api/internal/api/handler/v1/response"
	"github.com/mkstudio/studio-api/internal/api/middleware"
	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/service"
)

var errInvoiceNotOwned = errors.New("cannot access another member's invoice")

type InvoiceService interface {
	InvoiceDocument(ctx context.Context, invoiceID uint) (domain.InvoiceDocument, error)
}

type InvoiceHandler struct {
	svc InvoiceService
}

func NewInvoiceHandler(svc InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		svc: svc,
	}
}

// HandleGetInvoiceDocument godoc
// @Summary      Get the render-ready payload for an invoice
// @Tags         invoices
// @Produce      json
// @Param        invoiceID  path       int  true "invoice ID"
// @Success      200      {object}   domain.InvoiceDocument
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /invoices/{invoiceID}/document [get]
func (h *InvoiceHandler) HandleGetInvoiceDocument(ctx *gin.Context) {
	raw := ctx.Param("invoiceID")
	invoiceID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid invoice ID (%v)", raw)))

		return
	}

	doc, err := h.svc.InvoiceDocument(ctx.Request.Context(), uint(invoiceID))
	if err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrInvoiceNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetInvoiceDocument -> h.svc.InvoiceDocument -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	claims, err := middleware.GetClaims(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrPermissionDenied(err))

		return
	}

	// Adherents only see invoices billed to their own member.
	if claims.Role != domain.RoleAdmin {
		if claims.MemberID == nil || *claims.MemberID != doc.MemberID {
			response.RenderErr(ctx, response.ErrPermissionDenied(errInvoiceNotOwned))

			return
		}
	}

	ctx.JSON(http.StatusOK, doc)
}

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
	"github.com/mkstudio/studio-api/internal/api/middleware"
	"github.com/mkstudio/studio-api/internal/config"
	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/pkg/jwthelper"
	"github.com/mkstudio/studio-api/internal/service"
)

var errMemberIDMismatch = errors.New("cannot access another member's data")

type MemberService interface {
	Create(ctx context.Context, member domain.Member) (domain.Member, error)
	GetMember(ctx context.Context, id uint) (domain.Member, error)
	GetMembers(ctx context.Context) ([]domain.Member, error)
}

type MemberBalanceService interface {
	Balance(ctx context.Context, memberID uint) (domain.Balance, error)
	History(ctx context.Context, memberID uint) ([]domain.HistoryEntry, error)
}

type MemberLedgerService interface {
	DebitOne(ctx context.Context, memberID uint, kind domain.SessionKind) (domain.SessionUsage, error)
	GetMemberSales(ctx context.Context, memberID uint) ([]domain.Sale, error)
	GetMemberInvoices(ctx context.Context, memberID uint) ([]domain.Invoice, error)
}

type MemberBookingService interface {
	MemberBookings(ctx context.Context, memberID uint) ([]domain.Booking, error)
}

type MemberHandler struct {
	conf       *config.APIConfig
	svc        MemberService
	balanceSvc MemberBalanceService
	ledgerSvc  MemberLedgerService
	bookingSvc MemberBookingService
}

func NewMemberHandler(conf *config.APIConfig, svc MemberService, balanceSvc MemberBalanceService, ledgerSvc MemberLedgerService, bookingSvc MemberBookingService) *MemberHandler {
	return &MemberHandler{
		conf:       conf,
		svc:        svc,
		balanceSvc: balanceSvc,
		ledgerSvc:  ledgerSvc,
		bookingSvc: bookingSvc,
	}
}

// HandleCreateMember godoc
// @Summary      Register a member and open their adherent account
// @Tags         members
// @Produce      json
// @Param        request   body      request.CreateMemberRequest true "request body"
// @Success      201      {object}   response.CreateMemberResponse
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members [post]
func (h *MemberHandler) HandleCreateMember(ctx *gin.Context) {
	req := request.CreateMemberRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	member, err := h.svc.Create(ctx.Request.Context(), domain.Member{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrMemberEmailExists) || errors.Is(err, service.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrMemberEmailExists))

			return
		}

		err = fmt.Errorf("v1.HandleCreateMember -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	inviteToken, err := jwthelper.GenerateInviteToken([]byte(h.conf.JWTSigningKey), member.Email)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateMember -> jwthelper.GenerateInviteToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, response.CreateMemberResponse{
		Member:      member,
		InviteToken: inviteToken,
	})
}

// HandleGetMembers godoc
// @Summary      List all members
// @Tags         members
// @Produce      json
// @Success      200      {object}   []domain.Member
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members [get]
func (h *MemberHandler) HandleGetMembers(ctx *gin.Context) {
	members, err := h.svc.GetMembers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetMembers -> h.svc.GetMembers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, members)
}

// HandleGetMember godoc
// @Summary      Get a member
// @Tags         members
// @Produce      json
// @Param        memberID  path       int  true "member ID"
// @Success      200      {object}   domain.Member
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members/{memberID} [get]
func (h *MemberHandler) HandleGetMember(ctx *gin.Context) {
	memberID, ok := h.memberIDFromPath(ctx)
	if !ok {
		return
	}

	member, err := h.svc.GetMember(ctx.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMemberNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetMember -> h.svc.GetMember -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, member)
}

// HandleGetBalance godoc
// @Summary      Get a member's remaining session balance
// @Tags         members
// @Produce      json
// @Param        memberID  path       int  true "member ID"
// @Success      200      {object}   response.BalanceResponse
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members/{memberID}/balance [get]
func (h *MemberHandler) HandleGetBalance(ctx *gin.Context) {
	memberID, ok := h.memberIDFromPath(ctx)
	if !ok {
		return
	}

	balance, err := h.balanceSvc.Balance(ctx.Request.Context(), memberID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetBalance -> h.balanceSvc.Balance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.NewBalanceResponse(memberID, balance))
}

// HandleGetHistory godoc
// @Summary      Get a member's merged sale/usage history
// @Tags         members
// @Produce      json
// @Param        memberID  path       int  true "member ID"
// @Success      200      {object}   []domain.HistoryEntry
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members/{memberID}/history [get]
func (h *MemberHandler) HandleGetHistory(ctx *gin.Context) {
	memberID, ok := h.memberIDFromPath(ctx)
	if !ok {
		return
	}

	history, err := h.balanceSvc.History(ctx.Request.Context(), memberID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetHistory -> h.balanceSvc.History -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, history)
}

// HandleGetMemberInvoices godoc
// @Summary      List a member's invoices
// @Tags         members
// @Produce      json
// @Param        memberID  path       int  true "member ID"
// @Success      200      {object}   []domain.Invoice
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members/{memberID}/invoices [get]
func (h *MemberHandler) HandleGetMemberInvoices(ctx *gin.Context) {
	memberID, ok := h.memberIDFromPath(ctx)
	if !ok {
		return
	}

	invoices, err := h.ledgerSvc.GetMemberInvoices(ctx.Request.Context(), memberID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetMemberInvoices -> h.ledgerSvc.GetMemberInvoices -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, invoices)
}

// HandleGetMemberSales godoc
// @Summary      List a member's sales
// @Tags         members
// @Produce      json
// @Param        memberID  path       int  true "member ID"
// @Success      200      {object}   []domain.Sale
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members/{memberID}/sales [get]
func (h *MemberHandler) HandleGetMemberSales(ctx *gin.Context) {
	memberID, ok := h.memberIDFromPath(ctx)
	if !ok {
		return
	}

	sales, err := h.ledgerSvc.GetMemberSales(ctx.Request.Context(), memberID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetMemberSales -> h.ledgerSvc.GetMemberSales -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, sales)
}

// HandleGetMemberBookings godoc
// @Summary      List a member's active course bookings
// @Tags         members
// @Produce      json
// @Param        memberID  path       int  true "member ID"
// @Success      200      {object}   []domain.Booking
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members/{memberID}/bookings [get]
func (h *MemberHandler) HandleGetMemberBookings(ctx *gin.Context) {
	memberID, ok := h.memberIDFromPath(ctx)
	if !ok {
		return
	}

	bookings, err := h.bookingSvc.MemberBookings(ctx.Request.Context(), memberID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetMemberBookings -> h.bookingSvc.MemberBookings -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, bookings)
}

// HandleDebitSession godoc
// @Summary      Consume one session of the given kind
// @Tags         members
// @Produce      json
// @Param        memberID  path       int  true "member ID"
// @Param        request   body       request.DebitSessionRequest true "request body"
// @Success      201      {object}   domain.SessionUsage
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /members/{memberID}/debit [post]
func (h *MemberHandler) HandleDebitSession(ctx *gin.Context) {
	memberID, ok := h.memberIDFromPath(ctx)
	if !ok {
		return
	}

	req := request.DebitSessionRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	usage, err := h.ledgerSvc.DebitOne(ctx.Request.Context(), memberID, domain.SessionKind(req.SaleType))
	if err != nil {
		if errors.Is(err, service.ErrNoBalance) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrNoBalance))

			return
		}
		if errors.Is(err, service.ErrMemberNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMemberNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleDebitSession -> h.ledgerSvc.DebitOne -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, usage)
}

// memberIDFromPath parses the member id and enforces that adherents only
// reach their own member. Renders the error itself when it returns false.
func (h *MemberHandler) memberIDFromPath(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("memberID")
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid member ID (%v)", raw)))

		return 0, false
	}
	memberID := uint(parsed)

	claims, err := middleware.GetClaims(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrPermissionDenied(err))

		return 0, false
	}

	if claims.Role != domain.RoleAdmin {
		if claims.MemberID == nil || *claims.MemberID != memberID {
			response.RenderErr(ctx, response.ErrPermissionDenied(errMemberIDMismatch))

			return 0, false
		}
	}

	return memberID, true
}

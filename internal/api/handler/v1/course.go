package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkstudio/studio-api/internal/api/handler/v1/request"
	"github.com/mkstudio/studio-api/internal/api/handler/v1/response"
	"github.com/mkstudio/studio-api/internal/api/middleware"
	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/service"
)

var errEnrollmentNotOwned = errors.New("cannot cancel another member's enrollment")

type CourseService interface {
	Schedule(ctx context.Context) ([]domain.CourseInstance, error)
	CreateExceptional(ctx context.Context, name string, startsAt time.Time, maxSlots int) (domain.ExceptionalCourse, error)
	SetBookable(ctx context.Context, id uint, exceptional, bookable bool) error
}

type EnrollmentService interface {
	Enroll(ctx context.Context, memberID, courseID uint, exceptional bool) (domain.CourseEnrollment, error)
	CancelEnrollment(ctx context.Context, enrollmentID uint) error
	GetEnrollment(ctx context.Context, enrollmentID uint) (domain.CourseEnrollment, error)
}

type CourseHandler struct {
	svc       CourseService
	enrollSvc EnrollmentService
}

func NewCourseHandler(svc CourseService, enrollSvc EnrollmentService) *CourseHandler {
	return &CourseHandler{
		svc:       svc,
		enrollSvc: enrollSvc,
	}
}

// HandleGetSchedule godoc
// @Summary      Get the two-week course schedule
// @Tags         courses
// @Produce      json
// @Success      200      {object}   []domain.CourseInstance
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /schedule [get]
func (h *CourseHandler) HandleGetSchedule(ctx *gin.Context) {
	schedule, err := h.svc.Schedule(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetSchedule -> h.svc.Schedule -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, schedule)
}

// HandleCreateExceptionalCourse godoc
// @Summary      Create a one-off course
// @Tags         courses
// @Produce      json
// @Param        request   body      request.CreateExceptionalCourseRequest true "request body"
// @Success      201      {object}   domain.ExceptionalCourse
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /courses/exceptional [post]
func (h *CourseHandler) HandleCreateExceptionalCourse(ctx *gin.Context) {
	req := request.CreateExceptionalCourseRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	course, err := h.svc.CreateExceptional(ctx.Request.Context(), req.Name, req.Date, req.MaxSlots)
	if err != nil {
		if errors.Is(err, service.ErrCoursePast) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrCoursePast))

			return
		}

		err = fmt.Errorf("v1.HandleCreateExceptionalCourse -> h.svc.CreateExceptional -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, course)
}

// HandleSetBookable godoc
// @Summary      Open or close a course for booking
// @Tags         courses
// @Produce      json
// @Param        courseID  path       int  true "course ID"
// @Param        request   body      request.SetBookableRequest true "request body"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /courses/{courseID}/bookable [patch]
func (h *CourseHandler) HandleSetBookable(ctx *gin.Context) {
	raw := ctx.Param("courseID")
	courseID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid course ID (%v)", raw)))

		return
	}

	req := request.SetBookableRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := h.svc.SetBookable(ctx.Request.Context(), uint(courseID), req.IsExceptional, *req.IsBookable); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrCourseNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleSetBookable -> h.svc.SetBookable -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleEnroll godoc
// @Summary      Book a course slot, debiting one collective session
// @Tags         enrollments
// @Produce      json
// @Param        request   body      request.EnrollRequest true "request body"
// @Success      201      {object}   domain.CourseEnrollment
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /enrollments [post]
func (h *CourseHandler) HandleEnroll(ctx *gin.Context) {
	req := request.EnrollRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	claims, err := middleware.GetClaims(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrPermissionDenied(err))

		return
	}

	memberID := req.MemberID
	if claims.Role != domain.RoleAdmin {
		if claims.MemberID == nil {
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNoMemberSelected))

			return
		}
		memberID = *claims.MemberID
	}

	enrollment, err := h.enrollSvc.Enroll(ctx.Request.Context(), memberID, req.CourseID, req.IsExceptional)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoMemberSelected),
			errors.Is(err, service.ErrCoursePast),
			errors.Is(err, service.ErrCourseNotBookable),
			errors.Is(err, service.ErrNoBalance):
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		case errors.Is(err, service.ErrCourseFull):
			response.RenderErr(ctx, response.ErrConflict(service.ErrCourseFull))

			return
		case errors.Is(err, service.ErrCourseNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrCourseNotFound))

			return
		case errors.Is(err, service.ErrMemberNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMemberNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleEnroll -> h.enrollSvc.Enroll -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, enrollment)
}

// HandleCancelEnrollment godoc
// @Summary      Cancel a booking, restoring the debited session
// @Tags         enrollments
// @Produce      json
// @Param        enrollmentID  path       int  true "enrollment ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Security     BearerToken
// @Router       /enrollments/{enrollmentID} [delete]
func (h *CourseHandler) HandleCancelEnrollment(ctx *gin.Context) {
	raw := ctx.Param("enrollmentID")
	enrollmentID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid enrollment ID (%v)", raw)))

		return
	}

	claims, err := middleware.GetClaims(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrPermissionDenied(err))

		return
	}

	if claims.Role != domain.RoleAdmin {
		enrollment, err := h.enrollSvc.GetEnrollment(ctx.Request.Context(), uint(enrollmentID))
		if err != nil {
			if errors.Is(err, service.ErrEnrollmentNotFound) {
				response.RenderErr(ctx, response.ErrNotFound(service.ErrEnrollmentNotFound))

				return
			}

			err = fmt.Errorf("v1.HandleCancelEnrollment -> h.enrollSvc.GetEnrollment -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))

			return
		}

		if claims.MemberID == nil || enrollment.MemberID != *claims.MemberID {
			response.RenderErr(ctx, response.ErrPermissionDenied(errEnrollmentNotOwned))

			return
		}
	}

	if err := h.enrollSvc.CancelEnrollment(ctx.Request.Context(), uint(enrollmentID)); err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrEnrollmentNotFound))

			return
		case errors.Is(err, service.ErrCoursePast):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrCoursePast))

			return
		}

		err = fmt.Errorf("v1.HandleCancelEnrollment -> h.enrollSvc.CancelEnrollment -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

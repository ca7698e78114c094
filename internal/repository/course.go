package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository/dao"
)

var (
	ErrCourseNotFound     = dao.ErrCourseNotFound
	ErrCourseFull         = dao.ErrCourseFull
	ErrCourseNotBookable  = dao.ErrCourseNotBookable
	ErrEnrollmentNotFound = dao.ErrEnrollmentNotFound
)

type CourseDAO interface {
	EnsureInstances(ctx context.Context, courses []dao.Course) error
	FindInWindow(ctx context.Context, from, to time.Time) ([]dao.Course, error)
	FindExceptionalInWindow(ctx context.Context, from, to time.Time) ([]dao.ExceptionalCourse, error)
	FindByID(ctx context.Context, id uint) (dao.Course, error)
	FindExceptionalByID(ctx context.Context, id uint) (dao.ExceptionalCourse, error)
	InsertExceptional(ctx context.Context, course dao.ExceptionalCourse) (dao.ExceptionalCourse, error)
	SetBookable(ctx context.Context, id uint, exceptional, bookable bool) error
}

type EnrollmentDAO interface {
	InsertWithUsage(ctx context.Context, enrollment dao.CourseEnrollment, usage dao.SessionUsage) (dao.CourseEnrollment, error)
	CancelWithUsage(ctx context.Context, id uint, at time.Time) error
	FindByID(ctx context.Context, id uint) (dao.CourseEnrollment, error)
	FindActiveByMember(ctx context.Context, memberID uint) ([]dao.CourseEnrollment, error)
	ActiveCounts(ctx context.Context) (map[uint]int, map[uint]int, error)
}

type CourseRepository struct {
	courseDAO     CourseDAO
	enrollmentDAO EnrollmentDAO
}

func NewCourseRepository(courseDAO CourseDAO, enrollmentDAO EnrollmentDAO) *CourseRepository {
	return &CourseRepository{
		courseDAO:     courseDAO,
		enrollmentDAO: enrollmentDAO,
	}
}

func (r *CourseRepository) EnsureInstances(ctx context.Context, courses []domain.Course) error {
	daoCourses := make([]dao.Course, len(courses))
	for i, c := range courses {
		daoCourses[i] = dao.Course{
			Name:       c.Name,
			Weekday:    c.Weekday,
			StartsAt:   c.StartsAt,
			MaxSlots:   c.MaxSlots,
			IsBookable: c.IsBookable,
		}
	}

	if err := r.courseDAO.EnsureInstances(ctx, daoCourses); err != nil {
		return fmt.Errorf("r.courseDAO.EnsureInstances -> %w", err)
	}

	return nil
}

func (r *CourseRepository) FindCoursesInWindow(ctx context.Context, from, to time.Time) ([]domain.Course, error) {
	found, err := r.courseDAO.FindInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("r.courseDAO.FindInWindow -> %w", err)
	}

	courses := make([]domain.Course, len(found))
	for i, c := range found {
		courses[i] = r.courseDaoToDomain(c)
	}

	return courses, nil
}

func (r *CourseRepository) FindExceptionalInWindow(ctx context.Context, from, to time.Time) ([]domain.ExceptionalCourse, error) {
	found, err := r.courseDAO.FindExceptionalInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("r.courseDAO.FindExceptionalInWindow -> %w", err)
	}

	courses := make([]domain.ExceptionalCourse, len(found))
	for i, c := range found {
		courses[i] = r.exceptionalDaoToDomain(c)
	}

	return courses, nil
}

func (r *CourseRepository) FindCourseByID(ctx context.Context, id uint) (domain.Course, error) {
	found, err := r.courseDAO.FindByID(ctx, id)
	if err != nil {
		return domain.Course{}, fmt.Errorf("r.courseDAO.FindByID -> %w", err)
	}

	return r.courseDaoToDomain(found), nil
}

func (r *CourseRepository) FindExceptionalByID(ctx context.Context, id uint) (domain.ExceptionalCourse, error) {
	found, err := r.courseDAO.FindExceptionalByID(ctx, id)
	if err != nil {
		return domain.ExceptionalCourse{}, fmt.Errorf("r.courseDAO.FindExceptionalByID -> %w", err)
	}

	return r.exceptionalDaoToDomain(found), nil
}

func (r *CourseRepository) CreateExceptional(ctx context.Context, course domain.ExceptionalCourse) (domain.ExceptionalCourse, error) {
	created, err := r.courseDAO.InsertExceptional(ctx, dao.ExceptionalCourse{
		Name:       course.Name,
		StartsAt:   course.StartsAt,
		MaxSlots:   course.MaxSlots,
		IsBookable: course.IsBookable,
	})
	if err != nil {
		return domain.ExceptionalCourse{}, fmt.Errorf("r.courseDAO.InsertExceptional -> %w", err)
	}

	return r.exceptionalDaoToDomain(created), nil
}

func (r *CourseRepository) SetBookable(ctx context.Context, id uint, exceptional, bookable bool) error {
	if err := r.courseDAO.SetBookable(ctx, id, exceptional, bookable); err != nil {
		return fmt.Errorf("r.courseDAO.SetBookable -> %w", err)
	}

	return nil
}

// Enroll writes the enrollment/usage pair atomically; capacity, bookability
// and balance are re-validated by the DAO inside the transaction.
func (r *CourseRepository) Enroll(ctx context.Context, enrollment domain.CourseEnrollment, usage domain.SessionUsage) (domain.CourseEnrollment, error) {
	created, err := r.enrollmentDAO.InsertWithUsage(ctx,
		dao.CourseEnrollment{
			MemberID:            enrollment.MemberID,
			CourseID:            enrollment.CourseID,
			ExceptionalCourseID: enrollment.ExceptionalCourseID,
			IsExceptional:       enrollment.IsExceptional,
			CreatedAt:           enrollment.CreatedAt,
		},
		dao.SessionUsage{
			MemberID: usage.MemberID,
			SaleType: string(usage.Kind),
			SaleID:   usage.SaleID,
			UsedAt:   usage.UsedAt,
		},
	)
	if err != nil {
		return domain.CourseEnrollment{}, fmt.Errorf("r.enrollmentDAO.InsertWithUsage -> %w", err)
	}

	return r.enrollmentDaoToDomain(created), nil
}

func (r *CourseRepository) CancelEnrollment(ctx context.Context, id uint, at time.Time) error {
	if err := r.enrollmentDAO.CancelWithUsage(ctx, id, at); err != nil {
		return fmt.Errorf("r.enrollmentDAO.CancelWithUsage -> %w", err)
	}

	return nil
}

func (r *CourseRepository) FindEnrollmentByID(ctx context.Context, id uint) (domain.CourseEnrollment, error) {
	found, err := r.enrollmentDAO.FindByID(ctx, id)
	if err != nil {
		return domain.CourseEnrollment{}, fmt.Errorf("r.enrollmentDAO.FindByID -> %w", err)
	}

	return r.enrollmentDaoToDomain(found), nil
}

func (r *CourseRepository) FindActiveEnrollmentsByMember(ctx context.Context, memberID uint) ([]domain.CourseEnrollment, error) {
	found, err := r.enrollmentDAO.FindActiveByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("r.enrollmentDAO.FindActiveByMember -> %w", err)
	}

	enrollments := make([]domain.CourseEnrollment, len(found))
	for i, e := range found {
		enrollments[i] = r.enrollmentDaoToDomain(e)
	}

	return enrollments, nil
}

func (r *CourseRepository) ActiveEnrollmentCounts(ctx context.Context) (map[uint]int, map[uint]int, error) {
	regular, exceptional, err := r.enrollmentDAO.ActiveCounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("r.enrollmentDAO.ActiveCounts -> %w", err)
	}

	return regular, exceptional, nil
}

func (r *CourseRepository) courseDaoToDomain(c dao.Course) domain.Course {
	return domain.Course{
		ID:            c.ID,
		Name:          c.Name,
		Weekday:       c.Weekday,
		StartsAt:      c.StartsAt,
		MaxSlots:      c.MaxSlots,
		IsBookable:    c.IsBookable,
		IsDeactivated: c.IsDeactivated,
		IsDeleted:     c.IsDeleted,
	}
}

func (r *CourseRepository) exceptionalDaoToDomain(c dao.ExceptionalCourse) domain.ExceptionalCourse {
	return domain.ExceptionalCourse{
		ID:            c.ID,
		Name:          c.Name,
		StartsAt:      c.StartsAt,
		MaxSlots:      c.MaxSlots,
		IsBookable:    c.IsBookable,
		IsDeactivated: c.IsDeactivated,
		IsDeleted:     c.IsDeleted,
	}
}

func (r *CourseRepository) enrollmentDaoToDomain(e dao.CourseEnrollment) domain.CourseEnrollment {
	return domain.CourseEnrollment{
		ID:                  e.ID,
		MemberID:            e.MemberID,
		CourseID:            e.CourseID,
		ExceptionalCourseID: e.ExceptionalCourseID,
		IsExceptional:       e.IsExceptional,
		CreatedAt:           e.CreatedAt,
		CanceledAt:          e.CanceledAt,
	}
}

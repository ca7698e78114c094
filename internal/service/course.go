package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mkstudio/studio-api/internal/domain"
)

// Weekly template the schedule is materialized from. Every slot holds at
// most nine people.
var weeklyTemplate = []struct {
	weekday time.Weekday
	hour    int
	minute  int
	name    string
}{
	{time.Monday, 19, 40, "Renfo / Pilates"},
	{time.Tuesday, 17, 40, "Pilates"},
	{time.Tuesday, 18, 40, "Pilates"},
	{time.Wednesday, 19, 0, "Cross-training / Cardio"},
	{time.Thursday, 19, 40, "Pilates"},
	{time.Saturday, 10, 30, "Renfo / Abdos / Stretching"},
}

const templateMaxSlots = 9

type ScheduleCourseRepository interface {
	EnsureInstances(ctx context.Context, courses []domain.Course) error
	FindCoursesInWindow(ctx context.Context, from, to time.Time) ([]domain.Course, error)
	FindExceptionalInWindow(ctx context.Context, from, to time.Time) ([]domain.ExceptionalCourse, error)
	CreateExceptional(ctx context.Context, course domain.ExceptionalCourse) (domain.ExceptionalCourse, error)
	SetBookable(ctx context.Context, id uint, exceptional, bookable bool) error
	FindCourseByID(ctx context.Context, id uint) (domain.Course, error)
	FindExceptionalByID(ctx context.Context, id uint) (domain.ExceptionalCourse, error)
	FindActiveEnrollmentsByMember(ctx context.Context, memberID uint) ([]domain.CourseEnrollment, error)
	ActiveEnrollmentCounts(ctx context.Context) (map[uint]int, map[uint]int, error)
}

// CourseService materializes the rolling two-week schedule from the weekly
// template and projects it with live enrollment counts.
type CourseService struct {
	repo ScheduleCourseRepository

	now func() time.Time
}

func NewCourseService(repo ScheduleCourseRepository) *CourseService {
	return &CourseService{
		repo: repo,
		now:  time.Now,
	}
}

// Schedule returns every course instance of the current and next week,
// sorted by start time. Instances missing from the database are created on
// the way; concurrent reads may race on that insert, which the unique
// (name, date) index resolves.
func (s *CourseService) Schedule(ctx context.Context) ([]domain.CourseInstance, error) {
	now := s.now()
	from := weekStart(now)
	to := from.AddDate(0, 0, 14)

	if err := s.repo.EnsureInstances(ctx, templateInstances(from)); err != nil {
		return nil, fmt.Errorf("s.repo.EnsureInstances -> %w", err)
	}

	courses, err := s.repo.FindCoursesInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindCoursesInWindow -> %w", err)
	}

	exceptional, err := s.repo.FindExceptionalInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindExceptionalInWindow -> %w", err)
	}

	regularCounts, exceptionalCounts, err := s.repo.ActiveEnrollmentCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ActiveEnrollmentCounts -> %w", err)
	}

	nextWeek := from.AddDate(0, 0, 7)
	instances := make([]domain.CourseInstance, 0, len(courses)+len(exceptional))
	for _, c := range courses {
		instances = append(instances, domain.CourseInstance{
			ID:         c.ID,
			Name:       c.Name,
			StartsAt:   c.StartsAt,
			MaxSlots:   c.MaxSlots,
			IsBookable: c.IsBookable,
			Week:       weekLabel(c.StartsAt, nextWeek),
			IsPast:     !c.StartsAt.After(now),
			Enrolled:   regularCounts[c.ID],
		})
	}
	for _, c := range exceptional {
		instances = append(instances, domain.CourseInstance{
			ID:            c.ID,
			IsExceptional: true,
			Name:          c.Name,
			StartsAt:      c.StartsAt,
			MaxSlots:      c.MaxSlots,
			IsBookable:    c.IsBookable,
			Week:          weekLabel(c.StartsAt, nextWeek),
			IsPast:        !c.StartsAt.After(now),
			Enrolled:      exceptionalCounts[c.ID],
		})
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].StartsAt.Before(instances[j].StartsAt)
	})

	return instances, nil
}

func (s *CourseService) CreateExceptional(ctx context.Context, name string, startsAt time.Time, maxSlots int) (domain.ExceptionalCourse, error) {
	if !startsAt.After(s.now()) {
		return domain.ExceptionalCourse{}, ErrCoursePast
	}
	if maxSlots <= 0 {
		maxSlots = templateMaxSlots
	}

	created, err := s.repo.CreateExceptional(ctx, domain.ExceptionalCourse{
		Name:       name,
		StartsAt:   startsAt,
		MaxSlots:   maxSlots,
		IsBookable: true,
	})
	if err != nil {
		return domain.ExceptionalCourse{}, fmt.Errorf("s.repo.CreateExceptional -> %w", err)
	}

	return created, nil
}

func (s *CourseService) SetBookable(ctx context.Context, id uint, exceptional, bookable bool) error {
	if err := s.repo.SetBookable(ctx, id, exceptional, bookable); err != nil {
		return fmt.Errorf("s.repo.SetBookable -> %w", err)
	}

	return nil
}

// MemberBookings lists a member's active enrollments with their course
// details resolved.
func (s *CourseService) MemberBookings(ctx context.Context, memberID uint) ([]domain.Booking, error) {
	enrollments, err := s.repo.FindActiveEnrollmentsByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindActiveEnrollmentsByMember -> %w", err)
	}

	now := s.now()
	bookings := make([]domain.Booking, 0, len(enrollments))
	for _, e := range enrollments {
		var name string
		var startsAt time.Time
		if e.IsExceptional {
			course, err := s.repo.FindExceptionalByID(ctx, e.TargetID())
			if err != nil {
				return nil, fmt.Errorf("s.repo.FindExceptionalByID -> %w", err)
			}
			name, startsAt = course.Name, course.StartsAt
		} else {
			course, err := s.repo.FindCourseByID(ctx, e.TargetID())
			if err != nil {
				return nil, fmt.Errorf("s.repo.FindCourseByID -> %w", err)
			}
			name, startsAt = course.Name, course.StartsAt
		}

		bookings = append(bookings, domain.Booking{
			EnrollmentID:  e.ID,
			CourseName:    name,
			StartsAt:      startsAt,
			IsExceptional: e.IsExceptional,
			IsPast:        !startsAt.After(now),
		})
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartsAt.Before(bookings[j].StartsAt)
	})

	return bookings, nil
}

// weekStart returns Monday 00:00 of the week containing t, in t's location.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)

	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

func weekLabel(startsAt, nextWeek time.Time) string {
	if startsAt.Before(nextWeek) {
		return domain.WeekCurrent
	}

	return domain.WeekNext
}

// templateInstances expands the weekly template into dated instances for
// the two weeks starting at from (a Monday).
func templateInstances(from time.Time) []domain.Course {
	instances := make([]domain.Course, 0, 2*len(weeklyTemplate))
	for week := 0; week < 2; week++ {
		monday := from.AddDate(0, 0, 7*week)
		for _, slot := range weeklyTemplate {
			offset := (int(slot.weekday) + 6) % 7
			day := monday.AddDate(0, 0, offset)
			startsAt := time.Date(day.Year(), day.Month(), day.Day(), slot.hour, slot.minute, 0, 0, from.Location())
			instances = append(instances, domain.Course{
				Name:       slot.name,
				Weekday:    slot.weekday.String(),
				StartsAt:   startsAt,
				MaxSlots:   templateMaxSlots,
				IsBookable: true,
			})
		}
	}

	return instances
}

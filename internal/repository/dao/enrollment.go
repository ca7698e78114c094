package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrCourseFull         = errors.New("course is full")
	ErrCourseNotBookable  = errors.New("course is not bookable")
)

type CourseEnrollment struct {
	ID uint `gorm:"primaryKey"`

	MemberID            uint  `gorm:"index;not null"`
	CourseID            *uint `gorm:"index"`
	ExceptionalCourseID *uint `gorm:"index"`
	IsExceptional       bool  `gorm:"not null;default:false"`

	CreatedAt  time.Time `gorm:"not null"`
	CanceledAt *time.Time
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

type EnrollmentDAO struct {
	db *gorm.DB
}

func NewEnrollmentDAO(db *gorm.DB) *EnrollmentDAO {
	return &EnrollmentDAO{
		db: db,
	}
}

// lockForUpdate takes a row lock on dialects that support it. SQLite, used
// by the test suite, serializes writers on its own and rejects FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (d *EnrollmentDAO) activeCountQuery(tx *gorm.DB, enrollment CourseEnrollment) *gorm.DB {
	query := tx.Model(&CourseEnrollment{}).Where("canceled_at IS NULL")
	if enrollment.IsExceptional {
		return query.Where("exceptional_course_id = ?", *enrollment.ExceptionalCourseID)
	}
	return query.Where("course_id = ?", *enrollment.CourseID)
}

// InsertWithUsage creates the enrollment and its paired collective usage in
// one transaction. The course row and the member row are both locked before
// capacity, bookability and balance are re-validated, so two concurrent
// bookings cannot take the last slot, and two bookings into different
// courses cannot both spend the member's last session.
func (d *EnrollmentDAO) InsertWithUsage(ctx context.Context, enrollment CourseEnrollment, usage SessionUsage) (CourseEnrollment, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			maxSlots int
			bookable bool
		)
		if enrollment.IsExceptional {
			var course ExceptionalCourse
			err := lockForUpdate(tx).
				First(&course, *enrollment.ExceptionalCourseID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCourseNotFound
				}
				return err
			}
			maxSlots, bookable = course.MaxSlots, course.IsBookable && !course.IsDeactivated && !course.IsDeleted
		} else {
			var course Course
			err := lockForUpdate(tx).
				First(&course, *enrollment.CourseID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCourseNotFound
				}
				return err
			}
			maxSlots, bookable = course.MaxSlots, course.IsBookable && !course.IsDeactivated && !course.IsDeleted
		}

		if !bookable {
			return ErrCourseNotBookable
		}

		var active int64
		if err := d.activeCountQuery(tx, enrollment).Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(maxSlots) {
			return ErrCourseFull
		}

		var member Member
		if err := lockForUpdate(tx).First(&member, enrollment.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		balance, err := balanceForKind(tx, enrollment.MemberID, usage.SaleType)
		if err != nil {
			return err
		}
		if balance <= 0 {
			return ErrNoBalance
		}

		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}

		usage.EnrollmentID = &enrollment.ID

		return tx.Create(&usage).Error
	})
	if err != nil {
		return CourseEnrollment{}, err
	}

	return enrollment, nil
}

// CancelWithUsage cancels the enrollment and its paired usage together.
// Canceling an already-canceled enrollment is a no-op.
func (d *EnrollmentDAO) CancelWithUsage(ctx context.Context, id uint, at time.Time) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment CourseEnrollment
		err := lockForUpdate(tx).
			First(&enrollment, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		if enrollment.CanceledAt != nil {
			return nil
		}

		err = tx.Model(&CourseEnrollment{}).
			Where("id = ?", id).
			Update("canceled_at", at).Error
		if err != nil {
			return err
		}

		return tx.Model(&SessionUsage{}).
			Where("enrollment_id = ?", id).
			Update("is_canceled", true).Error
	})
}

func (d *EnrollmentDAO) FindByID(ctx context.Context, id uint) (CourseEnrollment, error) {
	var enrollment CourseEnrollment

	result := d.db.WithContext(ctx).First(&enrollment, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return CourseEnrollment{}, ErrEnrollmentNotFound
		}

		return CourseEnrollment{}, result.Error
	}

	return enrollment, nil
}

func (d *EnrollmentDAO) FindActiveByMember(ctx context.Context, memberID uint) ([]CourseEnrollment, error) {
	var enrollments []CourseEnrollment

	result := d.db.WithContext(ctx).
		Where("member_id = ? AND canceled_at IS NULL", memberID).
		Order("created_at desc").
		Find(&enrollments)
	if result.Error != nil {
		return nil, result.Error
	}

	return enrollments, nil
}

// ActiveCounts returns the active enrollment count per course instance,
// keyed separately for regular and exceptional courses.
func (d *EnrollmentDAO) ActiveCounts(ctx context.Context) (map[uint]int, map[uint]int, error) {
	var enrollments []CourseEnrollment

	result := d.db.WithContext(ctx).
		Where("canceled_at IS NULL").
		Find(&enrollments)
	if result.Error != nil {
		return nil, nil, result.Error
	}

	regular := make(map[uint]int)
	exceptional := make(map[uint]int)
	for _, e := range enrollments {
		if e.IsExceptional && e.ExceptionalCourseID != nil {
			exceptional[*e.ExceptionalCourseID]++
		} else if e.CourseID != nil {
			regular[*e.CourseID]++
		}
	}

	return regular, exceptional, nil
}

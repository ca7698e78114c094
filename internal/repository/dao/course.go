package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCourseNotFound = errors.New("course not found")

// Course rows are dated instances of the recurring weekly classes,
// materialized per schedule window. The (date, name) pair identifies an
// instance so re-materializing a window never duplicates rows.
type Course struct {
	ID uint `gorm:"primaryKey"`

	Name     string    `gorm:"not null;uniqueIndex:idx_courses_instance"`
	Weekday  string    `gorm:"column:day;not null"`
	StartsAt time.Time `gorm:"column:date;not null;uniqueIndex:idx_courses_instance"`
	MaxSlots int       `gorm:"column:max_slots;not null"`

	IsBookable    bool `gorm:"not null;default:true"`
	IsDeactivated bool `gorm:"not null;default:false"`
	IsDeleted     bool `gorm:"not null;default:false"`
}

func (Course) TableName() string {
	return "courses"
}

type ExceptionalCourse struct {
	ID uint `gorm:"primaryKey"`

	Name     string    `gorm:"not null"`
	StartsAt time.Time `gorm:"column:date;not null"`
	MaxSlots int       `gorm:"column:max_slots;not null"`

	IsBookable    bool `gorm:"not null;default:true"`
	IsDeactivated bool `gorm:"not null;default:false"`
	IsDeleted     bool `gorm:"not null;default:false"`
}

func (ExceptionalCourse) TableName() string {
	return "exceptional_courses"
}

type CourseDAO struct {
	db *gorm.DB
}

func NewCourseDAO(db *gorm.DB) *CourseDAO {
	return &CourseDAO{
		db: db,
	}
}

// EnsureInstances inserts any window instances that do not exist yet.
// Existing rows keep their flags, so a toggled is_bookable survives
// re-materialization.
func (d *CourseDAO) EnsureInstances(ctx context.Context, courses []Course) error {
	if len(courses) == 0 {
		return nil
	}

	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&courses).Error
}

func (d *CourseDAO) FindInWindow(ctx context.Context, from, to time.Time) ([]Course, error) {
	var courses []Course

	result := d.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Where("is_deleted = ? AND is_deactivated = ?", false, false).
		Order("date asc").
		Find(&courses)
	if result.Error != nil {
		return nil, result.Error
	}

	return courses, nil
}

func (d *CourseDAO) FindExceptionalInWindow(ctx context.Context, from, to time.Time) ([]ExceptionalCourse, error) {
	var courses []ExceptionalCourse

	result := d.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Where("is_deleted = ? AND is_deactivated = ?", false, false).
		Order("date asc").
		Find(&courses)
	if result.Error != nil {
		return nil, result.Error
	}

	return courses, nil
}

func (d *CourseDAO) FindByID(ctx context.Context, id uint) (Course, error) {
	var course Course

	result := d.db.WithContext(ctx).First(&course, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Course{}, ErrCourseNotFound
		}

		return Course{}, result.Error
	}

	return course, nil
}

func (d *CourseDAO) FindExceptionalByID(ctx context.Context, id uint) (ExceptionalCourse, error) {
	var course ExceptionalCourse

	result := d.db.WithContext(ctx).First(&course, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ExceptionalCourse{}, ErrCourseNotFound
		}

		return ExceptionalCourse{}, result.Error
	}

	return course, nil
}

func (d *CourseDAO) InsertExceptional(ctx context.Context, course ExceptionalCourse) (ExceptionalCourse, error) {
	result := d.db.WithContext(ctx).Create(&course)
	if result.Error != nil {
		return ExceptionalCourse{}, result.Error
	}

	return course, nil
}

func (d *CourseDAO) SetBookable(ctx context.Context, id uint, exceptional, bookable bool) error {
	var model any = &Course{}
	if exceptional {
		model = &ExceptionalCourse{}
	}

	result := d.db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Update("is_bookable", bookable)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}

	return nil
}

package domain

import "time"

// Course is one dated instance of a recurring weekly class, materialized
// from the fixed weekly template. ExceptionalCourse is a one-off class.
type Course struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Weekday       string    `json:"day"`
	StartsAt      time.Time `json:"date"`
	MaxSlots      int       `json:"max_slots"`
	IsBookable    bool      `json:"is_bookable"`
	IsDeactivated bool      `json:"is_deactivated"`
	IsDeleted     bool      `json:"is_deleted"`
}

type ExceptionalCourse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	StartsAt      time.Time `json:"date"`
	MaxSlots      int       `json:"max_slots"`
	IsBookable    bool      `json:"is_bookable"`
	IsDeactivated bool      `json:"is_deactivated"`
	IsDeleted     bool      `json:"is_deleted"`
}

// Week labels for the two-week rolling schedule window.
const (
	WeekCurrent = "current"
	WeekNext    = "next"
)

// CourseInstance is one bookable slot in the schedule projection, either a
// regular or an exceptional course.
type CourseInstance struct {
	ID            uint      `json:"id"`
	IsExceptional bool      `json:"is_exceptional"`
	Name          string    `json:"name"`
	StartsAt      time.Time `json:"date"`
	MaxSlots      int       `json:"max_slots"`
	IsBookable    bool      `json:"is_bookable"`
	Week          string    `json:"week"`
	IsPast        bool      `json:"is_past"`
	Enrolled      int       `json:"enrolled"`
}

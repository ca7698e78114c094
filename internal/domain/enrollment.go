package domain

import "time"

// CourseEnrollment claims one capacity slot on a course instance. Exactly
// one of CourseID/ExceptionalCourseID is set, selected by IsExceptional.
// An enrollment is active while CanceledAt is nil; each active enrollment
// is paired with one active collective SessionUsage.
type CourseEnrollment struct {
	ID                  uint       `json:"id"`
	MemberID            uint       `json:"member_id"`
	CourseID            *uint      `json:"course_id,omitempty"`
	ExceptionalCourseID *uint      `json:"exceptional_course_id,omitempty"`
	IsExceptional       bool       `json:"is_exceptional"`
	CreatedAt           time.Time  `json:"created_at"`
	CanceledAt          *time.Time `json:"canceled_at,omitempty"`
}

func (e CourseEnrollment) Active() bool {
	return e.CanceledAt == nil
}

// Booking is a member-facing view of one active enrollment.
type Booking struct {
	EnrollmentID  uint      `json:"enrollment_id"`
	CourseName    string    `json:"course_name"`
	StartsAt      time.Time `json:"date"`
	IsExceptional bool      `json:"is_exceptional"`
	IsPast        bool      `json:"is_past"`
}

// TargetID returns the id of whichever course the enrollment points at.
func (e CourseEnrollment) TargetID() uint {
	if e.IsExceptional {
		if e.ExceptionalCourseID != nil {
			return *e.ExceptionalCourseID
		}
		return 0
	}
	if e.CourseID != nil {
		return *e.CourseID
	}
	return 0
}

package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateExceptionalCourseRequest struct {
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	MaxSlots int       `json:"max_slots"`
}

func (req *CreateExceptionalCourseRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Date, validation.Required),
		validation.Field(&req.MaxSlots, validation.Min(0), validation.Max(50)),
	)
}

type SetBookableRequest struct {
	IsBookable    *bool `json:"is_bookable"`
	IsExceptional bool  `json:"is_exceptional"`
}

func (req *SetBookableRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.IsBookable, validation.NotNil),
	)
}

// EnrollRequest books a course slot. MemberID is only honored for admins;
// adherents always enroll the member linked to their account.
type EnrollRequest struct {
	CourseID      uint `json:"course_id"`
	IsExceptional bool `json:"is_exceptional"`
	MemberID      uint `json:"member_id"`
}

func (req *EnrollRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.CourseID, validation.Required),
	)
}

package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateMemberRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (req *CreateMemberRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Phone, validation.Length(0, 20)),
	)
}

type DebitSessionRequest struct {
	SaleType string `json:"sale_type"`
}

func (req *DebitSessionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.SaleType, validation.Required, validation.In("individual", "duo", "collective")),
	)
}

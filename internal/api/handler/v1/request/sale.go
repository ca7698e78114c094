package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// CreateSaleRequest records a pack sale or, with quantity 0 and
// credit_sessions set, an administrative credit.
type CreateSaleRequest struct {
	MemberID       uint   `json:"member_id"`
	SaleType       string `json:"sale_type"`
	Quantity       int    `json:"quantity"`
	CreditSessions int    `json:"credit_sessions"`
	PaymentMethod  string `json:"payment_method"`
	FamilyDiscount bool   `json:"family_discount"`
}

func (req *CreateSaleRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.MemberID, validation.Required),
		validation.Field(&req.SaleType, validation.Required, validation.In("individual", "duo", "collective")),
		validation.Field(&req.Quantity, validation.In(0, 1, 10, 20)),
		validation.Field(&req.CreditSessions, validation.Min(0)),
	)
	if err != nil {
		return err
	}

	if req.Quantity > 0 {
		return validation.ValidateStruct(
			req,
			validation.Field(&req.PaymentMethod, validation.Required, validation.In("cash", "check", "transfer", "card")),
		)
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.CreditSessions, validation.Required, validation.Min(1)),
	)
}

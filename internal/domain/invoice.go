package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is issued 1:1 with a non-credit sale. Immutable once created.
type Invoice struct {
	ID       uint            `json:"id"`
	SaleID   uint            `json:"sale_id"`
	MemberID uint            `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
	IssuedAt time.Time       `json:"issued_at"`

	Sale *Sale `json:"sale,omitempty"`
}

// InvoiceDocument carries everything the external PDF renderer needs.
type InvoiceDocument struct {
	InvoiceID     uint            `json:"invoice_id"`
	MemberID      uint            `json:"member_id"`
	StudioLines   []string        `json:"studio_lines"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email"`
	Description   string          `json:"description"`
	Kind          SessionKind     `json:"kind"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	Total         decimal.Decimal `json:"total"`
	IssuedAt      time.Time       `json:"issued_at"`
	PaymentMethod string          `json:"payment_method"`
}

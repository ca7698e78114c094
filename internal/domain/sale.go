package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale adds supply to the ledger: either a paid purchase or an
// administrative credit grant. IsCredit only controls invoicing; the
// quantity counts toward the balance either way.
type Sale struct {
	ID            uint            `json:"id"`
	MemberID      uint            `json:"member_id"`
	Kind          SessionKind     `json:"sale_type"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	IsCredit      bool            `json:"is_credit"`
	InvoiceID     *uint           `json:"invoice_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	Member  *Member  `json:"member,omitempty"`
	Invoice *Invoice `json:"invoice,omitempty"`
}

const (
	PaymentCash     = "cash"
	PaymentCheck    = "check"
	PaymentTransfer = "transfer"
	PaymentCard     = "card"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCheck, PaymentTransfer, PaymentCard:
		return true
	}
	return false
}

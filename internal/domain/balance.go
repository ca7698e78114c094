package domain

import "time"

// LowBalanceThreshold marks a kind as running low on the balance view.
// Inclusive: a balance of 3 is already low.
const LowBalanceThreshold = 3

// Balance is the derived entitlement count per kind. It is recomputed from
// the full sale/usage history on every read and is never stored.
type Balance struct {
	Individual int `json:"individual"`
	Duo        int `json:"duo"`
	Collective int `json:"collective"`
}

func (b Balance) ForKind(kind SessionKind) int {
	switch kind {
	case KindIndividual:
		return b.Individual
	case KindDuo:
		return b.Duo
	case KindCollective:
		return b.Collective
	}
	return 0
}

// History actions, as shown on the member/admin history views.
const (
	ActionSale         = "sale"
	ActionUsage        = "usage"
	ActionCancellation = "cancellation"
)

// HistoryEntry is one line of the merged sale/usage projection.
type HistoryEntry struct {
	Action     string      `json:"action"`
	Kind       SessionKind `json:"kind"`
	Quantity   int         `json:"quantity"`
	OccurredAt time.Time   `json:"occurred_at"`
}

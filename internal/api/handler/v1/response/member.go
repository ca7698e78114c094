package response

import (
	"github.com/mkstudio/studio-api/internal/domain"
)

// CreateMemberResponse returns the new member together with the one-shot
// invite token for the set-password link.
type CreateMemberResponse struct {
	Member      domain.Member `json:"member"`
	InviteToken string        `json:"invite_token"`
}

type KindBalance struct {
	Remaining int  `json:"remaining"`
	IsLow     bool `json:"is_low"`
}

type BalanceResponse struct {
	MemberID   uint        `json:"member_id"`
	Individual KindBalance `json:"individual"`
	Duo        KindBalance `json:"duo"`
	Collective KindBalance `json:"collective"`
}

func NewBalanceResponse(memberID uint, b domain.Balance) BalanceResponse {
	return BalanceResponse{
		MemberID:   memberID,
		Individual: newKindBalance(b.Individual),
		Duo:        newKindBalance(b.Duo),
		Collective: newKindBalance(b.Collective),
	}
}

func newKindBalance(remaining int) KindBalance {
	return KindBalance{
		Remaining: remaining,
		IsLow:     remaining <= domain.LowBalanceThreshold,
	}
}

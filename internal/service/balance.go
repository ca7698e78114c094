package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/mkstudio/studio-api/internal/domain"
)

type BalanceLedgerRepository interface {
	SupplyByKind(ctx context.Context, memberID uint) (map[domain.SessionKind]int, error)
	ConsumptionByKind(ctx context.Context, memberID uint) (map[domain.SessionKind]int, error)
	FindSalesByMember(ctx context.Context, memberID uint) ([]domain.Sale, error)
	FindUsagesByMember(ctx context.Context, memberID uint) ([]domain.SessionUsage, error)
}

// BalanceService derives entitlement balances from the full sale/usage
// history. Nothing is cached: every read recomputes from the ledger, and a
// failed read surfaces as an error, never as a zero balance.
type BalanceService struct {
	repo BalanceLedgerRepository
}

func NewBalanceService(repo BalanceLedgerRepository) *BalanceService {
	return &BalanceService{
		repo: repo,
	}
}

// Balance returns max(0, supply − consumption) per kind. Credits count into
// supply exactly like paid sales; canceled usages do not count at all.
func (s *BalanceService) Balance(ctx context.Context, memberID uint) (domain.Balance, error) {
	supply, err := s.repo.SupplyByKind(ctx, memberID)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("s.repo.SupplyByKind -> %w", err)
	}

	consumed, err := s.repo.ConsumptionByKind(ctx, memberID)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("s.repo.ConsumptionByKind -> %w", err)
	}

	return domain.Balance{
		Individual: clampZero(supply[domain.KindIndividual] - consumed[domain.KindIndividual]),
		Duo:        clampZero(supply[domain.KindDuo] - consumed[domain.KindDuo]),
		Collective: clampZero(supply[domain.KindCollective] - consumed[domain.KindCollective]),
	}, nil
}

// History merges sales and usages into one reverse-chronological view.
// Canceled usages stay visible, tagged as cancellations.
func (s *BalanceService) History(ctx context.Context, memberID uint) ([]domain.HistoryEntry, error) {
	sales, err := s.repo.FindSalesByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindSalesByMember -> %w", err)
	}

	usages, err := s.repo.FindUsagesByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindUsagesByMember -> %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(sales)+len(usages))
	for _, sale := range sales {
		entries = append(entries, domain.HistoryEntry{
			Action:     domain.ActionSale,
			Kind:       sale.Kind,
			Quantity:   sale.Quantity,
			OccurredAt: sale.CreatedAt,
		})
	}
	for _, usage := range usages {
		action := domain.ActionUsage
		if usage.IsCanceled {
			action = domain.ActionCancellation
		}
		entries = append(entries, domain.HistoryEntry{
			Action:     action,
			Kind:       usage.Kind,
			Quantity:   1,
			OccurredAt: usage.UsedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})

	return entries, nil
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

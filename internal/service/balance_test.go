package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository/dao"
)

func TestBalance_EmptyLedger(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	balance := f.balance(t, member.ID)

	assert.Equal(t, domain.Balance{}, balance)
}

func TestBalance_DebitWithoutSalesRejected(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	_, err := f.ledgerSvc.DebitOne(context.Background(), member.ID, domain.KindCollective)

	require.ErrorIs(t, err, ErrNoBalance)
	assert.Equal(t, domain.Balance{}, f.balance(t, member.ID))
}

func TestBalance_PackThenDebit(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	f.buyPack(t, member.ID, domain.KindCollective, 10)
	assert.Equal(t, 10, f.balance(t, member.ID).Collective)

	usage, err := f.ledgerSvc.DebitOne(context.Background(), member.ID, domain.KindCollective)
	require.NoError(t, err)
	assert.Equal(t, member.ID, usage.MemberID)
	assert.Equal(t, domain.KindCollective, usage.Kind)
	require.NotNil(t, usage.SaleID)

	assert.Equal(t, 9, f.balance(t, member.ID).Collective)
}

func TestBalance_KindsAreIndependent(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	f.buyPack(t, member.ID, domain.KindIndividual, 10)
	f.buyPack(t, member.ID, domain.KindDuo, 1)

	_, err := f.ledgerSvc.DebitOne(context.Background(), member.ID, domain.KindIndividual)
	require.NoError(t, err)

	balance := f.balance(t, member.ID)
	assert.Equal(t, 9, balance.Individual)
	assert.Equal(t, 1, balance.Duo)
	assert.Equal(t, 0, balance.Collective)

	_, err = f.ledgerSvc.DebitOne(context.Background(), member.ID, domain.KindCollective)
	require.ErrorIs(t, err, ErrNoBalance)
}

func TestBalance_CreditCountsAsSupply(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	sale, err := f.ledgerSvc.RecordSale(context.Background(), RecordSaleCommand{
		MemberID:       member.ID,
		Kind:           domain.KindIndividual,
		Quantity:       0,
		CreditSessions: 5,
	})
	require.NoError(t, err)
	assert.True(t, sale.IsCredit)
	assert.True(t, sale.Amount.IsZero())
	assert.Nil(t, sale.InvoiceID)

	assert.Equal(t, 5, f.balance(t, member.ID).Individual)
}

func TestBalance_NeverNegative(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	// Orphan usage rows can predate the ledger; they must clamp, not
	// underflow.
	require.NoError(t, f.db.Create(&dao.SessionUsage{
		MemberID: member.ID,
		SaleType: string(domain.KindDuo),
		UsedAt:   time.Now(),
	}).Error)

	assert.Equal(t, 0, f.balance(t, member.ID).Duo)
}

func TestHistory_MergedReverseChronological(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	f.buyPack(t, member.ID, domain.KindCollective, 10)
	_, err := f.ledgerSvc.DebitOne(context.Background(), member.ID, domain.KindCollective)
	require.NoError(t, err)

	// A canceled usage stays visible, tagged as a cancellation.
	require.NoError(t, f.db.Create(&dao.SessionUsage{
		MemberID:   member.ID,
		SaleType:   string(domain.KindCollective),
		UsedAt:     time.Now().Add(time.Minute),
		IsCanceled: true,
	}).Error)

	history, err := f.balanceSvc.History(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, domain.ActionCancellation, history[0].Action)
	assert.Equal(t, domain.ActionUsage, history[1].Action)
	assert.Equal(t, domain.ActionSale, history[2].Action)
	assert.Equal(t, 10, history[2].Quantity)

	for i := 1; i < len(history); i++ {
		assert.False(t, history[i-1].OccurredAt.Before(history[i].OccurredAt))
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstudio/studio-api/internal/domain"
)

func TestRecordSale_InvoicedAtomically(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	sale := f.buyPack(t, member.ID, domain.KindCollective, 10)

	require.NotNil(t, sale.InvoiceID)
	assert.True(t, sale.Amount.Equal(decimal.NewFromInt(100)))

	invoices, err := f.ledgerSvc.GetMemberInvoices(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, sale.ID, invoices[0].SaleID)
	assert.True(t, invoices[0].Amount.Equal(sale.Amount))
}

func TestRecordSale_Pricing(t *testing.T) {
	tests := []struct {
		name           string
		kind           domain.SessionKind
		quantity       int
		familyDiscount bool
		want           int64
		wantErr        error
	}{
		{"individual single", domain.KindIndividual, 1, false, 32, nil},
		{"individual ten pack", domain.KindIndividual, 10, false, 260, nil},
		{"individual has no twenty pack", domain.KindIndividual, 20, false, 0, ErrInvalidQuantity},
		{"duo single", domain.KindDuo, 1, false, 25, nil},
		{"duo ten pack", domain.KindDuo, 10, false, 220, nil},
		{"duo ten pack with family discount", domain.KindDuo, 10, true, 187, nil},
		{"duo has no twenty pack", domain.KindDuo, 20, false, 0, ErrInvalidQuantity},
		{"collective single", domain.KindCollective, 1, false, 12, nil},
		{"collective ten pack", domain.KindCollective, 10, false, 100, nil},
		{"collective twenty pack", domain.KindCollective, 20, false, 185, nil},
		{"family discount only applies to duo ten", domain.KindCollective, 10, true, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := SaleAmount(tt.kind, tt.quantity, tt.familyDiscount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, amount.Equal(decimal.NewFromInt(tt.want)), "got %v", amount)
		})
	}
}

func TestRecordSale_Rejections(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	ctx := context.Background()

	_, err := f.ledgerSvc.RecordSale(ctx, RecordSaleCommand{
		Kind: domain.KindDuo, Quantity: 1, PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrNoMemberSelected)

	_, err = f.ledgerSvc.RecordSale(ctx, RecordSaleCommand{
		MemberID: 9999, Kind: domain.KindDuo, Quantity: 1, PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = f.ledgerSvc.RecordSale(ctx, RecordSaleCommand{
		MemberID: member.ID, Kind: "yoga", Quantity: 1, PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = f.ledgerSvc.RecordSale(ctx, RecordSaleCommand{
		MemberID: member.ID, Kind: domain.KindDuo, Quantity: 1, PaymentMethod: "bitcoin",
	})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	// Quantity 0 without credit sessions is neither a pack nor a credit.
	_, err = f.ledgerSvc.RecordSale(ctx, RecordSaleCommand{
		MemberID: member.ID, Kind: domain.KindDuo,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Equal(t, domain.Balance{}, f.balance(t, member.ID))
}

func TestEnroll_DebitsOneCollectiveSession(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	f.buyPack(t, member.ID, domain.KindCollective, 10)
	course := f.futureCourse(t, 9)

	enrollment, err := f.ledgerSvc.Enroll(context.Background(), member.ID, course.ID, true)
	require.NoError(t, err)
	assert.True(t, enrollment.Active())
	require.NotNil(t, enrollment.ExceptionalCourseID)
	assert.Equal(t, course.ID, *enrollment.ExceptionalCourseID)

	assert.Equal(t, 9, f.balance(t, member.ID).Collective)

	_, exceptional, err := f.courseRepo.ActiveEnrollmentCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, exceptional[course.ID])
}

func TestCreateDebit_UnknownMemberRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledgerRepo.CreateDebit(context.Background(), domain.SessionUsage{
		MemberID: 42,
		Kind:     domain.KindIndividual,
		UsedAt:   time.Now(),
	})
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestEnroll_UnknownMemberRejected(t *testing.T) {
	f := newFixture(t)
	course := f.futureCourse(t, 9)

	_, err := f.courseRepo.Enroll(context.Background(),
		domain.CourseEnrollment{
			MemberID:            42,
			ExceptionalCourseID: &course.ID,
			IsExceptional:       true,
			CreatedAt:           time.Now(),
		},
		domain.SessionUsage{
			MemberID: 42,
			Kind:     domain.KindCollective,
			UsedAt:   time.Now(),
		})
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestEnroll_FullCourseRejected(t *testing.T) {
	f := newFixture(t)
	first := f.createMember(t, "first@example.com")
	second := f.createMember(t, "second@example.com")
	f.buyPack(t, first.ID, domain.KindCollective, 10)
	f.buyPack(t, second.ID, domain.KindCollective, 10)
	course := f.futureCourse(t, 1)

	_, err := f.ledgerSvc.Enroll(context.Background(), first.ID, course.ID, true)
	require.NoError(t, err)

	// Capacity binds even when the member has plenty of balance.
	_, err = f.ledgerSvc.Enroll(context.Background(), second.ID, course.ID, true)
	require.ErrorIs(t, err, ErrCourseFull)
	assert.Equal(t, 10, f.balance(t, second.ID).Collective)
}

func TestEnroll_NoBalanceRejected(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	f.buyPack(t, member.ID, domain.KindIndividual, 10)
	course := f.futureCourse(t, 9)

	// Individual balance does not pay for collective courses.
	_, err := f.ledgerSvc.Enroll(context.Background(), member.ID, course.ID, true)
	require.ErrorIs(t, err, ErrNoBalance)

	_, exceptional, err := f.courseRepo.ActiveEnrollmentCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, exceptional[course.ID])
}

func TestEnroll_NotBookableRejected(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	f.buyPack(t, member.ID, domain.KindCollective, 10)
	course := f.futureCourse(t, 9)

	require.NoError(t, f.courseSvc.SetBookable(context.Background(), course.ID, true, false))

	_, err := f.ledgerSvc.Enroll(context.Background(), member.ID, course.ID, true)
	require.ErrorIs(t, err, ErrCourseNotBookable)

	require.NoError(t, f.courseSvc.SetBookable(context.Background(), course.ID, true, true))
	_, err = f.ledgerSvc.Enroll(context.Background(), member.ID, course.ID, true)
	require.NoError(t, err)
}

func TestEnroll_PastCourseRejected(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	f.buyPack(t, member.ID, domain.KindCollective, 10)
	course := f.futureCourse(t, 9)

	// A course that started this very instant is already past.
	f.ledgerSvc.now = func() time.Time { return course.StartsAt }

	_, err := f.ledgerSvc.Enroll(context.Background(), member.ID, course.ID, true)
	require.ErrorIs(t, err, ErrCoursePast)
	assert.Equal(t, 10, f.balance(t, member.ID).Collective)
}

func TestCancelEnrollment_RestoresBalanceAndCapacity(t *testing.T) {
	f := newFixture(t)
	first := f.createMember(t, "first@example.com")
	second := f.createMember(t, "second@example.com")
	f.buyPack(t, first.ID, domain.KindCollective, 10)
	f.buyPack(t, second.ID, domain.KindCollective, 10)
	course := f.futureCourse(t, 1)
	ctx := context.Background()

	enrollment, err := f.ledgerSvc.Enroll(ctx, first.ID, course.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 9, f.balance(t, first.ID).Collective)

	require.NoError(t, f.ledgerSvc.CancelEnrollment(ctx, enrollment.ID))
	assert.Equal(t, 10, f.balance(t, first.ID).Collective)

	// The freed slot is immediately claimable by someone else.
	_, err = f.ledgerSvc.Enroll(ctx, second.ID, course.ID, true)
	require.NoError(t, err)

	history, err := f.balanceSvc.History(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ActionCancellation, history[0].Action)
}

func TestCancelEnrollment_Idempotent(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	f.buyPack(t, member.ID, domain.KindCollective, 10)
	course := f.futureCourse(t, 9)
	ctx := context.Background()

	enrollment, err := f.ledgerSvc.Enroll(ctx, member.ID, course.ID, true)
	require.NoError(t, err)

	require.NoError(t, f.ledgerSvc.CancelEnrollment(ctx, enrollment.ID))
	require.NoError(t, f.ledgerSvc.CancelEnrollment(ctx, enrollment.ID))

	// The second cancel must not restore a second session.
	assert.Equal(t, 10, f.balance(t, member.ID).Collective)
}

func TestCancelEnrollment_PastCourseRejected(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	f.buyPack(t, member.ID, domain.KindCollective, 10)
	course := f.futureCourse(t, 9)
	ctx := context.Background()

	enrollment, err := f.ledgerSvc.Enroll(ctx, member.ID, course.ID, true)
	require.NoError(t, err)

	f.ledgerSvc.now = func() time.Time { return course.StartsAt.Add(time.Hour) }

	err = f.ledgerSvc.CancelEnrollment(ctx, enrollment.ID)
	require.ErrorIs(t, err, ErrCoursePast)
	assert.Equal(t, 9, f.balance(t, member.ID).Collective)
}

func TestInvoiceDocument(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	sale := f.buyPack(t, member.ID, domain.KindCollective, 10)
	require.NotNil(t, sale.InvoiceID)

	doc, err := f.ledgerSvc.InvoiceDocument(context.Background(), *sale.InvoiceID)
	require.NoError(t, err)

	assert.Equal(t, *sale.InvoiceID, doc.InvoiceID)
	assert.Equal(t, member.ID, doc.MemberID)
	assert.Equal(t, "Jane Doe", doc.ClientName)
	assert.Equal(t, "jane@example.com", doc.ClientEmail)
	assert.Equal(t, domain.KindCollective, doc.Kind)
	assert.Equal(t, 10, doc.Quantity)
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.PaymentCard, doc.PaymentMethod)
	assert.NotEmpty(t, doc.StudioLines)
}

func TestInvoiceDocument_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledgerSvc.InvoiceDocument(context.Background(), 42)
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

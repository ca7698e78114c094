package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository"
)

var (
	ErrNoMemberSelected     = errors.New("no member selected")
	ErrInvalidKind          = errors.New("unknown session kind")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrCoursePast           = errors.New("course has already started")

	ErrNoBalance          = repository.ErrNoBalance
	ErrCourseFull         = repository.ErrCourseFull
	ErrCourseNotBookable  = repository.ErrCourseNotBookable
	ErrCourseNotFound     = repository.ErrCourseNotFound
	ErrEnrollmentNotFound = repository.ErrEnrollmentNotFound
	ErrMemberNotFound     = repository.ErrMemberNotFound
	ErrSaleNotFound       = repository.ErrSaleNotFound
	ErrInvoiceNotFound    = repository.ErrInvoiceNotFound
)

type LedgerRepository interface {
	BalanceLedgerRepository
	CreateSale(ctx context.Context, sale domain.Sale, withInvoice bool) (domain.Sale, error)
	FindSaleByID(ctx context.Context, id uint) (domain.Sale, error)
	FindAllSales(ctx context.Context) ([]domain.Sale, error)
	LatestSaleID(ctx context.Context, memberID uint, kind domain.SessionKind) (*uint, error)
	CreateDebit(ctx context.Context, usage domain.SessionUsage) (domain.SessionUsage, error)
	FindInvoiceByID(ctx context.Context, id uint) (domain.Invoice, error)
	FindInvoicesByMember(ctx context.Context, memberID uint) ([]domain.Invoice, error)
}

type LedgerCourseRepository interface {
	FindCourseByID(ctx context.Context, id uint) (domain.Course, error)
	FindExceptionalByID(ctx context.Context, id uint) (domain.ExceptionalCourse, error)
	Enroll(ctx context.Context, enrollment domain.CourseEnrollment, usage domain.SessionUsage) (domain.CourseEnrollment, error)
	CancelEnrollment(ctx context.Context, id uint, at time.Time) error
	FindEnrollmentByID(ctx context.Context, id uint) (domain.CourseEnrollment, error)
}

type LedgerMemberRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Member, error)
}

// LedgerService owns every write to the entitlement ledger. Each mutator
// validates its preconditions against freshly loaded state, then hands the
// write to the repository, which re-validates balance and capacity inside
// the same transaction.
type LedgerService struct {
	ledgerRepo LedgerRepository
	courseRepo LedgerCourseRepository
	memberRepo LedgerMemberRepository
	balance    *BalanceService

	now func() time.Time
}

func NewLedgerService(ledgerRepo LedgerRepository, courseRepo LedgerCourseRepository, memberRepo LedgerMemberRepository, balance *BalanceService) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		courseRepo: courseRepo,
		memberRepo: memberRepo,
		balance:    balance,
		now:        time.Now,
	}
}

// RecordSaleCommand describes one sale to record. A quantity of 0 together
// with CreditSessions > 0 records an administrative credit instead of a
// paid pack.
type RecordSaleCommand struct {
	MemberID       uint
	Kind           domain.SessionKind
	Quantity       int
	CreditSessions int
	PaymentMethod  string
	FamilyDiscount bool
}

// RecordSale appends supply to the ledger. Paid sales are priced from the
// fixed table and invoiced atomically with the sale; credits carry a zero
// amount and never produce an invoice.
func (s *LedgerService) RecordSale(ctx context.Context, cmd RecordSaleCommand) (domain.Sale, error) {
	if cmd.MemberID == 0 {
		return domain.Sale{}, ErrNoMemberSelected
	}
	if !cmd.Kind.Valid() {
		return domain.Sale{}, ErrInvalidKind
	}

	if _, err := s.memberRepo.FindByID(ctx, cmd.MemberID); err != nil {
		return domain.Sale{}, fmt.Errorf("s.memberRepo.FindByID -> %w", err)
	}

	sale := domain.Sale{
		MemberID:  cmd.MemberID,
		Kind:      cmd.Kind,
		CreatedAt: s.now(),
	}

	if cmd.Quantity == 0 {
		if cmd.CreditSessions <= 0 {
			return domain.Sale{}, ErrInvalidQuantity
		}
		sale.Quantity = cmd.CreditSessions
		sale.Amount = decimal.Zero
		sale.IsCredit = true
	} else {
		if !domain.ValidPaymentMethod(cmd.PaymentMethod) {
			return domain.Sale{}, ErrInvalidPaymentMethod
		}
		amount, err := SaleAmount(cmd.Kind, cmd.Quantity, cmd.FamilyDiscount)
		if err != nil {
			return domain.Sale{}, err
		}
		sale.Quantity = cmd.Quantity
		sale.Amount = amount
		sale.PaymentMethod = cmd.PaymentMethod
	}

	created, err := s.ledgerRepo.CreateSale(ctx, sale, !sale.IsCredit)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("s.ledgerRepo.CreateSale -> %w", err)
	}

	return created, nil
}

// DebitOne consumes one session of the given kind. The balance is derived
// fresh here and re-checked inside the insert transaction; a member with no
// remaining sessions is rejected with ErrNoBalance.
func (s *LedgerService) DebitOne(ctx context.Context, memberID uint, kind domain.SessionKind) (domain.SessionUsage, error) {
	if memberID == 0 {
		return domain.SessionUsage{}, ErrNoMemberSelected
	}
	if !kind.Valid() {
		return domain.SessionUsage{}, ErrInvalidKind
	}

	balance, err := s.balance.Balance(ctx, memberID)
	if err != nil {
		return domain.SessionUsage{}, fmt.Errorf("s.balance.Balance -> %w", err)
	}
	if balance.ForKind(kind) <= 0 {
		return domain.SessionUsage{}, ErrNoBalance
	}

	saleID, err := s.ledgerRepo.LatestSaleID(ctx, memberID, kind)
	if err != nil {
		return domain.SessionUsage{}, fmt.Errorf("s.ledgerRepo.LatestSaleID -> %w", err)
	}

	created, err := s.ledgerRepo.CreateDebit(ctx, domain.SessionUsage{
		MemberID: memberID,
		Kind:     kind,
		SaleID:   saleID,
		UsedAt:   s.now(),
	})
	if err != nil {
		return domain.SessionUsage{}, fmt.Errorf("s.ledgerRepo.CreateDebit -> %w", err)
	}

	return created, nil
}

// Enroll books a member onto a course instance and debits one collective
// session, as a single transaction. The course must be bookable, not yet
// started, and under capacity; the member must have collective balance.
func (s *LedgerService) Enroll(ctx context.Context, memberID, courseID uint, exceptional bool) (domain.CourseEnrollment, error) {
	if memberID == 0 {
		return domain.CourseEnrollment{}, ErrNoMemberSelected
	}

	if _, err := s.memberRepo.FindByID(ctx, memberID); err != nil {
		return domain.CourseEnrollment{}, fmt.Errorf("s.memberRepo.FindByID -> %w", err)
	}

	startsAt, bookable, err := s.courseGate(ctx, courseID, exceptional)
	if err != nil {
		return domain.CourseEnrollment{}, err
	}
	if !bookable {
		return domain.CourseEnrollment{}, ErrCourseNotBookable
	}
	if !startsAt.After(s.now()) {
		return domain.CourseEnrollment{}, ErrCoursePast
	}

	balance, err := s.balance.Balance(ctx, memberID)
	if err != nil {
		return domain.CourseEnrollment{}, fmt.Errorf("s.balance.Balance -> %w", err)
	}
	if balance.Collective <= 0 {
		return domain.CourseEnrollment{}, ErrNoBalance
	}

	saleID, err := s.ledgerRepo.LatestSaleID(ctx, memberID, domain.KindCollective)
	if err != nil {
		return domain.CourseEnrollment{}, fmt.Errorf("s.ledgerRepo.LatestSaleID -> %w", err)
	}

	enrollment := domain.CourseEnrollment{
		MemberID:      memberID,
		IsExceptional: exceptional,
		CreatedAt:     s.now(),
	}
	if exceptional {
		enrollment.ExceptionalCourseID = &courseID
	} else {
		enrollment.CourseID = &courseID
	}

	created, err := s.courseRepo.Enroll(ctx, enrollment, domain.SessionUsage{
		MemberID: memberID,
		Kind:     domain.KindCollective,
		SaleID:   saleID,
		UsedAt:   s.now(),
	})
	if err != nil {
		return domain.CourseEnrollment{}, fmt.Errorf("s.courseRepo.Enroll -> %w", err)
	}

	return created, nil
}

// CancelEnrollment frees the slot and restores the debited session by
// flagging the paired usage as canceled. Canceling an already-canceled
// enrollment is a no-op; a course that has started can no longer be
// canceled.
func (s *LedgerService) CancelEnrollment(ctx context.Context, enrollmentID uint) error {
	enrollment, err := s.courseRepo.FindEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return fmt.Errorf("s.courseRepo.FindEnrollmentByID -> %w", err)
	}
	if !enrollment.Active() {
		return nil
	}

	startsAt, _, err := s.courseGate(ctx, enrollment.TargetID(), enrollment.IsExceptional)
	if err != nil {
		return err
	}
	if !startsAt.After(s.now()) {
		return ErrCoursePast
	}

	if err := s.courseRepo.CancelEnrollment(ctx, enrollmentID, s.now()); err != nil {
		return fmt.Errorf("s.courseRepo.CancelEnrollment -> %w", err)
	}

	return nil
}

func (s *LedgerService) GetEnrollment(ctx context.Context, enrollmentID uint) (domain.CourseEnrollment, error) {
	enrollment, err := s.courseRepo.FindEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return domain.CourseEnrollment{}, fmt.Errorf("s.courseRepo.FindEnrollmentByID -> %w", err)
	}

	return enrollment, nil
}

func (s *LedgerService) GetSale(ctx context.Context, id uint) (domain.Sale, error) {
	sale, err := s.ledgerRepo.FindSaleByID(ctx, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("s.ledgerRepo.FindSaleByID -> %w", err)
	}

	return sale, nil
}

func (s *LedgerService) GetSales(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.ledgerRepo.FindAllSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.ledgerRepo.FindAllSales -> %w", err)
	}

	return sales, nil
}

func (s *LedgerService) GetMemberSales(ctx context.Context, memberID uint) ([]domain.Sale, error) {
	sales, err := s.ledgerRepo.FindSalesByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("s.ledgerRepo.FindSalesByMember -> %w", err)
	}

	return sales, nil
}

func (s *LedgerService) GetMemberInvoices(ctx context.Context, memberID uint) ([]domain.Invoice, error) {
	invoices, err := s.ledgerRepo.FindInvoicesByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("s.ledgerRepo.FindInvoicesByMember -> %w", err)
	}

	return invoices, nil
}

// courseGate loads the targeted course fresh and reports its start time and
// effective bookability.
func (s *LedgerService) courseGate(ctx context.Context, courseID uint, exceptional bool) (time.Time, bool, error) {
	if exceptional {
		course, err := s.courseRepo.FindExceptionalByID(ctx, courseID)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("s.courseRepo.FindExceptionalByID -> %w", err)
		}
		bookable := course.IsBookable && !course.IsDeactivated && !course.IsDeleted
		return course.StartsAt, bookable, nil
	}

	course, err := s.courseRepo.FindCourseByID(ctx, courseID)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("s.courseRepo.FindCourseByID -> %w", err)
	}
	bookable := course.IsBookable && !course.IsDeactivated && !course.IsDeleted
	return course.StartsAt, bookable, nil
}

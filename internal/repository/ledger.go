package repository

import (
	"context"
	"fmt"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository/dao"
)

var (
	ErrNoBalance       = dao.ErrNoBalance
	ErrSaleNotFound    = dao.ErrSaleNotFound
	ErrInvoiceNotFound = dao.ErrInvoiceNotFound
)

type SaleDAO interface {
	InsertWithInvoice(ctx context.Context, sale dao.Sale, withInvoice bool) (dao.Sale, error)
	FindByID(ctx context.Context, id uint) (dao.Sale, error)
	FindAll(ctx context.Context) ([]dao.Sale, error)
	FindByMember(ctx context.Context, memberID uint) ([]dao.Sale, error)
	FindLatestIDByMemberAndKind(ctx context.Context, memberID uint, kind string) (*uint, error)
	KindQuantitySums(ctx context.Context, memberID uint) (map[string]int, error)
}

type UsageDAO interface {
	InsertDebit(ctx context.Context, usage dao.SessionUsage) (dao.SessionUsage, error)
	KindActiveCounts(ctx context.Context, memberID uint) (map[string]int, error)
	FindByMember(ctx context.Context, memberID uint) ([]dao.SessionUsage, error)
}

type InvoiceDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Invoice, error)
	FindByMember(ctx context.Context, memberID uint) ([]dao.Invoice, error)
}

// LedgerRepository covers the sale/usage/invoice tables that together form
// the entitlement ledger.
type LedgerRepository struct {
	saleDAO    SaleDAO
	usageDAO   UsageDAO
	invoiceDAO InvoiceDAO
}

func NewLedgerRepository(saleDAO SaleDAO, usageDAO UsageDAO, invoiceDAO InvoiceDAO) *LedgerRepository {
	return &LedgerRepository{
		saleDAO:    saleDAO,
		usageDAO:   usageDAO,
		invoiceDAO: invoiceDAO,
	}
}

// CreateSale records the sale and, for invoiced sales, its invoice in one
// atomic write.
func (r *LedgerRepository) CreateSale(ctx context.Context, sale domain.Sale, withInvoice bool) (domain.Sale, error) {
	created, err := r.saleDAO.InsertWithInvoice(ctx, dao.Sale{
		MemberID:      sale.MemberID,
		SaleType:      string(sale.Kind),
		Quantity:      sale.Quantity,
		Amount:        sale.Amount,
		PaymentMethod: sale.PaymentMethod,
		IsCredit:      sale.IsCredit,
		CreatedAt:     sale.CreatedAt,
	}, withInvoice)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("r.saleDAO.InsertWithInvoice -> %w", err)
	}

	return r.saleDaoToDomain(created), nil
}

func (r *LedgerRepository) FindSaleByID(ctx context.Context, id uint) (domain.Sale, error) {
	found, err := r.saleDAO.FindByID(ctx, id)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("r.saleDAO.FindByID -> %w", err)
	}

	return r.saleDaoToDomain(found), nil
}

func (r *LedgerRepository) FindAllSales(ctx context.Context) ([]domain.Sale, error) {
	found, err := r.saleDAO.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.saleDAO.FindAll -> %w", err)
	}

	sales := make([]domain.Sale, len(found))
	for i, s := range found {
		sales[i] = r.saleDaoToDomain(s)
	}

	return sales, nil
}

func (r *LedgerRepository) FindSalesByMember(ctx context.Context, memberID uint) ([]domain.Sale, error) {
	found, err := r.saleDAO.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("r.saleDAO.FindByMember -> %w", err)
	}

	sales := make([]domain.Sale, len(found))
	for i, s := range found {
		sales[i] = r.saleDaoToDomain(s)
	}

	return sales, nil
}

func (r *LedgerRepository) LatestSaleID(ctx context.Context, memberID uint, kind domain.SessionKind) (*uint, error) {
	id, err := r.saleDAO.FindLatestIDByMemberAndKind(ctx, memberID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("r.saleDAO.FindLatestIDByMemberAndKind -> %w", err)
	}

	return id, nil
}

// SupplyByKind sums sale quantities per kind, credits included.
func (r *LedgerRepository) SupplyByKind(ctx context.Context, memberID uint) (map[domain.SessionKind]int, error) {
	sums, err := r.saleDAO.KindQuantitySums(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("r.saleDAO.KindQuantitySums -> %w", err)
	}

	return kindMap(sums), nil
}

// ConsumptionByKind counts non-canceled usages per kind.
func (r *LedgerRepository) ConsumptionByKind(ctx context.Context, memberID uint) (map[domain.SessionKind]int, error) {
	counts, err := r.usageDAO.KindActiveCounts(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("r.usageDAO.KindActiveCounts -> %w", err)
	}

	return kindMap(counts), nil
}

func (r *LedgerRepository) CreateDebit(ctx context.Context, usage domain.SessionUsage) (domain.SessionUsage, error) {
	created, err := r.usageDAO.InsertDebit(ctx, dao.SessionUsage{
		MemberID: usage.MemberID,
		SaleType: string(usage.Kind),
		SaleID:   usage.SaleID,
		UsedAt:   usage.UsedAt,
	})
	if err != nil {
		return domain.SessionUsage{}, fmt.Errorf("r.usageDAO.InsertDebit -> %w", err)
	}

	return r.usageDaoToDomain(created), nil
}

func (r *LedgerRepository) FindUsagesByMember(ctx context.Context, memberID uint) ([]domain.SessionUsage, error) {
	found, err := r.usageDAO.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("r.usageDAO.FindByMember -> %w", err)
	}

	usages := make([]domain.SessionUsage, len(found))
	for i, u := range found {
		usages[i] = r.usageDaoToDomain(u)
	}

	return usages, nil
}

func (r *LedgerRepository) FindInvoiceByID(ctx context.Context, id uint) (domain.Invoice, error) {
	found, err := r.invoiceDAO.FindByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("r.invoiceDAO.FindByID -> %w", err)
	}

	return r.invoiceDaoToDomain(found), nil
}

func (r *LedgerRepository) FindInvoicesByMember(ctx context.Context, memberID uint) ([]domain.Invoice, error) {
	found, err := r.invoiceDAO.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("r.invoiceDAO.FindByMember -> %w", err)
	}

	invoices := make([]domain.Invoice, len(found))
	for i, inv := range found {
		invoices[i] = r.invoiceDaoToDomain(inv)
	}

	return invoices, nil
}

func kindMap(raw map[string]int) map[domain.SessionKind]int {
	m := make(map[domain.SessionKind]int, len(raw))
	for _, kind := range domain.Kinds() {
		m[kind] = raw[string(kind)]
	}

	return m
}

func (r *LedgerRepository) saleDaoToDomain(s dao.Sale) domain.Sale {
	sale := domain.Sale{
		ID:            s.ID,
		MemberID:      s.MemberID,
		Kind:          domain.SessionKind(s.SaleType),
		Quantity:      s.Quantity,
		Amount:        s.Amount,
		PaymentMethod: s.PaymentMethod,
		IsCredit:      s.IsCredit,
		InvoiceID:     s.InvoiceID,
		CreatedAt:     s.CreatedAt,
	}

	if s.Member.ID != 0 {
		member := domain.Member{
			ID:        s.Member.ID,
			FirstName: s.Member.FirstName,
			LastName:  s.Member.LastName,
			Email:     s.Member.Email,
			Phone:     s.Member.Phone,
		}
		sale.Member = &member
	}

	return sale
}

func (r *LedgerRepository) usageDaoToDomain(u dao.SessionUsage) domain.SessionUsage {
	return domain.SessionUsage{
		ID:           u.ID,
		MemberID:     u.MemberID,
		Kind:         domain.SessionKind(u.SaleType),
		SaleID:       u.SaleID,
		EnrollmentID: u.EnrollmentID,
		UsedAt:       u.UsedAt,
		IsCanceled:   u.IsCanceled,
	}
}

func (r *LedgerRepository) invoiceDaoToDomain(inv dao.Invoice) domain.Invoice {
	invoice := domain.Invoice{
		ID:       inv.ID,
		SaleID:   inv.SaleID,
		MemberID: inv.MemberID,
		Amount:   inv.Amount,
		IssuedAt: inv.IssuedAt,
	}

	if inv.Sale.ID != 0 {
		sale := r.saleDaoToDomain(inv.Sale)
		invoice.Sale = &sale
	}

	return invoice
}

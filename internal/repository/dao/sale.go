package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrSaleNotFound = errors.New("sale not found")

type Sale struct {
	ID uint `gorm:"primaryKey"`

	MemberID uint   `gorm:"index;not null"`
	Member   Member `gorm:"foreignKey:MemberID"`

	SaleType      string          `gorm:"column:sale_type;not null"`
	Quantity      int             `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PaymentMethod string          `gorm:"not null"`
	IsCredit      bool            `gorm:"not null;default:false"`
	InvoiceID     *uint

	CreatedAt time.Time `gorm:"not null"`
}

func (Sale) TableName() string {
	return "sales"
}

type SaleDAO struct {
	db *gorm.DB
}

func NewSaleDAO(db *gorm.DB) *SaleDAO {
	return &SaleDAO{
		db: db,
	}
}

// InsertWithInvoice creates the sale and, when withInvoice is set, its
// invoice plus the back-filled invoice reference, all in one transaction.
func (d *SaleDAO) InsertWithInvoice(ctx context.Context, sale Sale, withInvoice bool) (Sale, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		if !withInvoice {
			return nil
		}

		invoice := Invoice{
			SaleID:   sale.ID,
			MemberID: sale.MemberID,
			Amount:   sale.Amount,
			IssuedAt: sale.CreatedAt,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		sale.InvoiceID = &invoice.ID

		return tx.Model(&Sale{}).
			Where("id = ?", sale.ID).
			Update("invoice_id", invoice.ID).Error
	})
	if err != nil {
		return Sale{}, err
	}

	return sale, nil
}

func (d *SaleDAO) FindByID(ctx context.Context, id uint) (Sale, error) {
	var sale Sale

	result := d.db.WithContext(ctx).
		Preload("Member").
		First(&sale, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Sale{}, ErrSaleNotFound
		}

		return Sale{}, result.Error
	}

	return sale, nil
}

func (d *SaleDAO) FindAll(ctx context.Context) ([]Sale, error) {
	var sales []Sale

	result := d.db.WithContext(ctx).
		Preload("Member").
		Order("created_at desc").
		Find(&sales)
	if result.Error != nil {
		return nil, result.Error
	}

	return sales, nil
}

func (d *SaleDAO) FindByMember(ctx context.Context, memberID uint) ([]Sale, error) {
	var sales []Sale

	result := d.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at desc").
		Find(&sales)
	if result.Error != nil {
		return nil, result.Error
	}

	return sales, nil
}

// FindLatestIDByMemberAndKind returns the id of the member's most recent
// sale of the kind, or nil when the member has none. The id only links
// provenance on a usage row; it never validates the balance.
func (d *SaleDAO) FindLatestIDByMemberAndKind(ctx context.Context, memberID uint, kind string) (*uint, error) {
	var sale Sale

	result := d.db.WithContext(ctx).
		Where("member_id = ? AND sale_type = ?", memberID, kind).
		Order("created_at desc").
		First(&sale)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, result.Error
	}

	return &sale.ID, nil
}

// KindQuantitySums returns per-kind supply: the sum of sale quantities,
// credits and purchases alike.
func (d *SaleDAO) KindQuantitySums(ctx context.Context, memberID uint) (map[string]int, error) {
	var rows []struct {
		SaleType string
		Total    int
	}

	result := d.db.WithContext(ctx).
		Model(&Sale{}).
		Select("sale_type, COALESCE(SUM(quantity), 0) as total").
		Where("member_id = ?", memberID).
		Group("sale_type").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	sums := make(map[string]int, len(rows))
	for _, row := range rows {
		sums[row.SaleType] = row.Total
	}

	return sums, nil
}

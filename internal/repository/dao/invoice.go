package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

type Invoice struct {
	ID uint `gorm:"primaryKey"`

	SaleID   uint `gorm:"uniqueIndex;not null"`
	Sale     Sale `gorm:"foreignKey:SaleID"`
	MemberID uint `gorm:"index;not null"`

	Amount   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IssuedAt time.Time       `gorm:"not null"`
}

func (Invoice) TableName() string {
	return "invoices"
}

type InvoiceDAO struct {
	db *gorm.DB
}

func NewInvoiceDAO(db *gorm.DB) *InvoiceDAO {
	return &InvoiceDAO{
		db: db,
	}
}

func (d *InvoiceDAO) FindByID(ctx context.Context, id uint) (Invoice, error) {
	var invoice Invoice

	result := d.db.WithContext(ctx).
		Preload("Sale").
		Preload("Sale.Member").
		First(&invoice, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Invoice{}, ErrInvoiceNotFound
		}

		return Invoice{}, result.Error
	}

	return invoice, nil
}

func (d *InvoiceDAO) FindByMember(ctx context.Context, memberID uint) ([]Invoice, error) {
	var invoices []Invoice

	result := d.db.WithContext(ctx).
		Preload("Sale").
		Where("member_id = ?", memberID).
		Order("issued_at desc").
		Find(&invoices)
	if result.Error != nil {
		return nil, result.Error
	}

	return invoices, nil
}

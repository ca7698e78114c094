package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNoBalance = errors.New("no session balance remaining")

type SessionUsage struct {
	ID uint `gorm:"primaryKey"`

	MemberID     uint   `gorm:"index;not null"`
	SaleType     string `gorm:"column:sale_type;not null"`
	SaleID       *uint
	EnrollmentID *uint `gorm:"index"`

	UsedAt     time.Time `gorm:"not null"`
	IsCanceled bool      `gorm:"not null;default:false"`
}

func (SessionUsage) TableName() string {
	return "session_usage"
}

// balanceForKind recomputes supply minus consumption for one (member, kind)
// inside the caller's transaction, clamped at zero.
func balanceForKind(tx *gorm.DB, memberID uint, kind string) (int, error) {
	var supply int64
	err := tx.Model(&Sale{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("member_id = ? AND sale_type = ?", memberID, kind).
		Scan(&supply).Error
	if err != nil {
		return 0, err
	}

	var consumed int64
	err = tx.Model(&SessionUsage{}).
		Where("member_id = ? AND sale_type = ? AND is_canceled = ?", memberID, kind, false).
		Count(&consumed).Error
	if err != nil {
		return 0, err
	}

	balance := int(supply - consumed)
	if balance < 0 {
		balance = 0
	}

	return balance, nil
}

type UsageDAO struct {
	db *gorm.DB
}

func NewUsageDAO(db *gorm.DB) *UsageDAO {
	return &UsageDAO{
		db: db,
	}
}

// InsertDebit appends one usage row. The member row is locked before the
// balance is re-derived, so concurrent debits for the same member serialize
// and cannot both spend the last unit.
func (d *UsageDAO) InsertDebit(ctx context.Context, usage SessionUsage) (SessionUsage, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member Member
		if err := lockForUpdate(tx).First(&member, usage.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		balance, err := balanceForKind(tx, usage.MemberID, usage.SaleType)
		if err != nil {
			return err
		}
		if balance <= 0 {
			return ErrNoBalance
		}

		return tx.Create(&usage).Error
	})
	if err != nil {
		return SessionUsage{}, err
	}

	return usage, nil
}

// KindActiveCounts returns per-kind consumption: the count of non-canceled
// usage rows.
func (d *UsageDAO) KindActiveCounts(ctx context.Context, memberID uint) (map[string]int, error) {
	var rows []struct {
		SaleType string
		Total    int
	}

	result := d.db.WithContext(ctx).
		Model(&SessionUsage{}).
		Select("sale_type, COUNT(*) as total").
		Where("member_id = ? AND is_canceled = ?", memberID, false).
		Group("sale_type").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SaleType] = row.Total
	}

	return counts, nil
}

func (d *UsageDAO) FindByMember(ctx context.Context, memberID uint) ([]SessionUsage, error) {
	var usages []SessionUsage

	result := d.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("used_at desc").
		Find(&usages)
	if result.Error != nil {
		return nil, result.Error
	}

	return usages, nil
}

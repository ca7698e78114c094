package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrMemberEmailExists = errors.New("member already exists")
	ErrMemberNotFound    = errors.New("member not found")
)

type Member struct {
	ID uint `gorm:"primaryKey"`

	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	Email     string `gorm:"unique;not null"`
	Phone     string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type MemberDAO struct {
	db *gorm.DB
}

func NewMemberDAO(db *gorm.DB) *MemberDAO {
	return &MemberDAO{
		db: db,
	}
}

// InsertWithUser creates the member and its adherent account together, so a
// failed account insert cannot strand a member row.
func (d *MemberDAO) InsertWithUser(ctx context.Context, member Member, user User) (Member, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		user.MemberID = &member.ID

		return tx.Create(&user).Error
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.Message, `unique constraint "uni_members_email"`) {
				return Member{}, ErrMemberEmailExists
			}
			if strings.Contains(pgErr.Message, `unique constraint "uni_users_email"`) {
				return Member{}, ErrUserEmailExists
			}
		}

		return Member{}, err
	}

	return member, nil
}

func (d *MemberDAO) FindByID(ctx context.Context, id uint) (Member, error) {
	var member Member

	result := d.db.WithContext(ctx).First(&member, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Member{}, ErrMemberNotFound
		}

		return Member{}, result.Error
	}

	return member, nil
}

func (d *MemberDAO) FindByEmail(ctx context.Context, email string) (Member, error) {
	var member Member

	result := d.db.WithContext(ctx).First(&member, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Member{}, ErrMemberNotFound
		}

		return Member{}, result.Error
	}

	return member, nil
}

func (d *MemberDAO) FindAll(ctx context.Context) ([]Member, error) {
	var members []Member

	result := d.db.WithContext(ctx).
		Order("last_name asc, first_name asc").
		Find(&members)
	if result.Error != nil {
		return nil, result.Error
	}

	return members, nil
}

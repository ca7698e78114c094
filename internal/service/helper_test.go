package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository"
	"github.com/mkstudio/studio-api/internal/repository/dao"
)

type fixture struct {
	db *gorm.DB

	ledgerRepo *repository.LedgerRepository
	courseRepo *repository.CourseRepository

	balanceSvc *BalanceService
	ledgerSvc  *LedgerService
	courseSvc  *CourseService
	memberSvc  *MemberService
	authSvc    *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%v?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(db))

	memberRepo := repository.NewMemberRepository(dao.NewMemberDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	ledgerRepo := repository.NewLedgerRepository(dao.NewSaleDAO(db), dao.NewUsageDAO(db), dao.NewInvoiceDAO(db))
	courseRepo := repository.NewCourseRepository(dao.NewCourseDAO(db), dao.NewEnrollmentDAO(db))

	balanceSvc := NewBalanceService(ledgerRepo)

	return &fixture{
		db:         db,
		ledgerRepo: ledgerRepo,
		courseRepo: courseRepo,
		balanceSvc: balanceSvc,
		ledgerSvc:  NewLedgerService(ledgerRepo, courseRepo, memberRepo, balanceSvc),
		courseSvc:  NewCourseService(courseRepo),
		memberSvc:  NewMemberService(memberRepo),
		authSvc:    NewAuthService(userRepo),
	}
}

func (f *fixture) createMember(t *testing.T, email string) domain.Member {
	t.Helper()

	member, err := f.memberSvc.Create(context.Background(), domain.Member{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
	})
	require.NoError(t, err)

	return member
}

func (f *fixture) buyPack(t *testing.T, memberID uint, kind domain.SessionKind, quantity int) domain.Sale {
	t.Helper()

	sale, err := f.ledgerSvc.RecordSale(context.Background(), RecordSaleCommand{
		MemberID:      memberID,
		Kind:          kind,
		Quantity:      quantity,
		PaymentMethod: domain.PaymentCard,
	})
	require.NoError(t, err)

	return sale
}

func (f *fixture) futureCourse(t *testing.T, maxSlots int) domain.ExceptionalCourse {
	t.Helper()

	course, err := f.courseSvc.CreateExceptional(context.Background(),
		"Special Pilates", time.Now().Add(48*time.Hour), maxSlots)
	require.NoError(t, err)

	return course
}

func (f *fixture) balance(t *testing.T, memberID uint) domain.Balance {
	t.Helper()

	balance, err := f.balanceSvc.Balance(context.Background(), memberID)
	require.NoError(t, err)

	return balance
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository/dao"
)

func TestMemberCreate_OpensAdherentAccount(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	ctx := context.Background()

	require.NoError(t, f.authSvc.SetPassword(ctx, member.Email, "sup3rsecret"))

	user, err := f.authSvc.Login(ctx, member.Email, "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdherent, user.Role)
	require.NotNil(t, user.MemberID)
	assert.Equal(t, member.ID, *user.MemberID)
}

func TestMemberCreate_AccountFailureLeavesNoMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An account already holds the email, so the paired user insert fails.
	require.NoError(t, f.db.Create(&dao.User{
		Email: "jane@example.com",
		Role:  domain.RoleAdherent,
	}).Error)

	_, err := f.memberSvc.Create(ctx, domain.Member{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
	})
	require.Error(t, err)

	// The member insert must have rolled back with it.
	members, err := f.memberSvc.GetMembers(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestLogin_BeforePasswordSetRejected(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")

	_, err := f.authSvc.Login(context.Background(), member.Email, "")
	require.ErrorIs(t, err, ErrWrongCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	member := f.createMember(t, "jane@example.com")
	ctx := context.Background()

	require.NoError(t, f.authSvc.SetPassword(ctx, member.Email, "sup3rsecret"))

	_, err := f.authSvc.Login(ctx, member.Email, "not-the-password")
	require.ErrorIs(t, err, ErrWrongCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.authSvc.Login(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrWrongCredentials)
}

func TestSetPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.authSvc.SetPassword(context.Background(), "nobody@example.com", "sup3rsecret")
	require.ErrorIs(t, err, ErrUserNotFound)
}

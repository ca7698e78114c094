package service

import (
	"context"
	"fmt"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository"
)

var (
	ErrMemberEmailExists = repository.ErrMemberEmailExists
	ErrUserEmailExists   = repository.ErrUserEmailExists
)

type MemberRepository interface {
	CreateWithUser(ctx context.Context, member domain.Member, user domain.User) (domain.Member, error)
	FindByID(ctx context.Context, id uint) (domain.Member, error)
	FindByEmail(ctx context.Context, email string) (domain.Member, error)
	FindAll(ctx context.Context) ([]domain.Member, error)
}

type MemberService struct {
	memberRepo MemberRepository
}

func NewMemberService(memberRepo MemberRepository) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
	}
}

// Create registers the member and opens an adherent account on the same
// email, in one transaction. The account starts without a password; the
// member sets one through the invite link.
func (s *MemberService) Create(ctx context.Context, member domain.Member) (domain.Member, error) {
	created, err := s.memberRepo.CreateWithUser(ctx, member, domain.User{
		Email: member.Email,
		Role:  domain.RoleAdherent,
	})
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.memberRepo.CreateWithUser -> %w", err)
	}

	return created, nil
}

func (s *MemberService) GetMember(ctx context.Context, id uint) (domain.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.memberRepo.FindByID -> %w", err)
	}

	return member, nil
}

func (s *MemberService) GetMembers(ctx context.Context) ([]domain.Member, error) {
	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.memberRepo.FindAll -> %w", err)
	}

	return members, nil
}

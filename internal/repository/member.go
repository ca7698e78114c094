package repository

import (
	"context"
	"fmt"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository/dao"
)

var (
	ErrMemberEmailExists = dao.ErrMemberEmailExists
	ErrMemberNotFound    = dao.ErrMemberNotFound
)

type MemberDAO interface {
	InsertWithUser(ctx context.Context, member dao.Member, user dao.User) (dao.Member, error)
	FindByID(ctx context.Context, id uint) (dao.Member, error)
	FindByEmail(ctx context.Context, email string) (dao.Member, error)
	FindAll(ctx context.Context) ([]dao.Member, error)
}

type MemberRepository struct {
	dao MemberDAO
}

func NewMemberRepository(dao MemberDAO) *MemberRepository {
	return &MemberRepository{
		dao: dao,
	}
}

// CreateWithUser registers the member and its account atomically.
func (r *MemberRepository) CreateWithUser(ctx context.Context, member domain.Member, user domain.User) (domain.Member, error) {
	created, err := r.dao.InsertWithUser(ctx, dao.Member{
		FirstName: member.FirstName,
		LastName:  member.LastName,
		Email:     member.Email,
		Phone:     member.Phone,
	}, dao.User{
		Email: user.Email,
		Role:  user.Role,
	})
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.InsertWithUser -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *MemberRepository) FindByID(ctx context.Context, id uint) (domain.Member, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (domain.Member, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *MemberRepository) FindAll(ctx context.Context) ([]domain.Member, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	members := make([]domain.Member, len(found))
	for i, m := range found {
		members[i] = r.daoToDomain(m)
	}

	return members, nil
}

func (r *MemberRepository) daoToDomain(m dao.Member) domain.Member {
	return domain.Member{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Phone:     m.Phone,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkstudio/studio-api/internal/domain"
	"github.com/mkstudio/studio-api/internal/repository"
)

var (
	ErrWrongCredentials = errors.New("wrong email or password")
	ErrUserNotFound     = repository.ErrUserNotFound
)

type AuthUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	UpdatePassword(ctx context.Context, id uint, hashed string) error
}

type AuthService struct {
	userRepo AuthUserRepository
}

func NewAuthService(userRepo AuthUserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// Login checks the credentials and returns the account. Unknown emails and
// bad passwords both come back as ErrWrongCredentials. An account whose
// password was never set cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrWrongCredentials
		}
		return domain.User{}, fmt.Errorf("s.userRepo.FindByEmail -> %w", err)
	}

	if user.Password == "" {
		return domain.User{}, ErrWrongCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongCredentials
	}

	return user, nil
}

// SetPassword stores a bcrypt hash of the new password for the account
// behind the given email. Called from the invite flow after the invite
// token has been verified.
func (s *AuthService) SetPassword(ctx context.Context, email, password string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("s.userRepo.FindByEmail -> %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return fmt.Errorf("s.userRepo.UpdatePassword -> %w", err)
	}

	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	return user, nil
}

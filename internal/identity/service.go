// Package identity provides user registration, authentication and password recovery.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/storefront-auth/internal/domain"
)

// TokenIssuer issues and verifies session tokens.
type TokenIssuer interface {
	Issue(subjectID string, role domain.Role) (string, error)
	Verify(token string) (subjectID string, role domain.Role, err error)
}

// Service implements identity business logic.
// It keeps no mutable state of its own; concurrent calls are safe as long as
// the repository is.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// RegisterInput holds data for creating a user.
// A nil Role registers an ordinary user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
	Role     *domain.Role
}

// LoginInput holds user credentials.
type LoginInput struct {
	Email    string
	Password string
}

// ResetPasswordInput holds the security question challenge and the new password.
type ResetPasswordInput struct {
	Email       string
	Answer      string
	NewPassword string
}

// AuthResult is returned by a successful authentication.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new user with a hashed password.
// A duplicate email is reported as ErrEmailExists whether it is caught by the
// lookup or by the store's uniqueness constraint on insert.
func (s *Service) Register(ctx context.Context, input RegisterInput) (user *domain.User, err error) {
	defer func() { recordOutcome(opRegister, err) }()

	if anyEmpty(input.Name, input.Email, input.Password, input.Phone, input.Address, input.Answer) {
		return nil, ErrMissingFields
	}

	role := domain.RoleUser
	if input.Role != nil {
		role = *input.Role
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	_, err = s.repo.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, storeError("get user by email", err)
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user = &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		PasswordHash: hash,
		Answer:       input.Answer,
		Role:         role,
	}

	if err = s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, storeError("create user", err)
	}

	return publicView(user), nil
}

// Authenticate verifies credentials and issues a session token.
//
// An unknown email yields ErrUserNotFound and a wrong password yields
// ErrInvalidCredentials. Keeping them apart matches the existing client
// contract even though it reveals whether an email is registered.
func (s *Service) Authenticate(ctx context.Context, input LoginInput) (result *AuthResult, err error) {
	defer func() { recordOutcome(opAuthenticate, err) }()

	if anyEmpty(input.Email, input.Password) {
		return nil, ErrMissingFields
	}

	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError("get user by email", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{
		User:  publicView(user),
		Token: token,
	}, nil
}

// ResetPassword replaces the password of the user whose email and security
// answer both match. No token is issued.
func (s *Service) ResetPassword(ctx context.Context, input ResetPasswordInput) (err error) {
	defer func() { recordOutcome(opReset, err) }()

	if anyEmpty(input.Email, input.Answer, input.NewPassword) {
		return ErrMissingFields
	}

	user, err := s.repo.GetUserByEmailAndAnswer(ctx, input.Email, input.Answer)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrChallengeFailed
		}
		return storeError("get user by email and answer", err)
	}

	hash, err := s.hashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	if err = s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return storeError("update password hash", err)
	}

	return nil
}

// ValidateToken verifies a session token and returns its subject and role.
func (s *Service) ValidateToken(_ context.Context, token string) (string, domain.Role, error) {
	return s.tokens.Verify(token)
}

// GetUserByID returns the public view of a user.
func (s *Service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError("get user by id", err)
	}
	return publicView(user), nil
}

func (s *Service) hashPassword(password string) (string, error) {
	start := time.Now()
	defer observeHashDuration(start)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, ErrHashing) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrHashing, err)
	}
	return hash, nil
}

// publicView returns a copy of user without credential material.
func publicView(user *domain.User) *domain.User {
	view := *user
	view.PasswordHash = ""
	view.Answer = ""
	return &view
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func anyEmpty(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}

package identity

import (
	"context"

	"github.com/bissquit/storefront-auth/internal/domain"
)

// Repository defines the interface for user record storage.
//
// Lookups return ErrUserNotFound on a miss. CreateUser must enforce email
// uniqueness atomically and report a violation as ErrEmailExists.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByEmailAndAnswer(ctx context.Context, email, answer string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

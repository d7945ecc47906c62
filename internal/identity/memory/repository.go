// Package memory provides an in-process implementation of the identity repository.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bissquit/storefront-auth/internal/domain"
	"github.com/bissquit/storefront-auth/internal/identity"
	"github.com/google/uuid"
)

// Repository implements identity.Repository with a mutex-guarded map.
// The email index is checked and written under one lock, so concurrent
// inserts of the same email cannot both succeed.
type Repository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

// CreateUser stores a new user and assigns its ID and creation time.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return identity.ErrEmailExists
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()

	stored := *user
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	found := *r.byID[id]
	return &found, nil
}

// GetUserByEmailAndAnswer retrieves a user whose email and security answer both match.
func (r *Repository) GetUserByEmailAndAnswer(ctx context.Context, email, answer string) (*domain.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Answer != answer {
		return nil, identity.ErrUserNotFound
	}
	return user, nil
}

// UpdatePasswordHash replaces the password hash of a user.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return identity.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

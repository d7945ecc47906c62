// Package postgres provides PostgreSQL implementation of identity repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/storefront-auth/internal/domain"
	"github.com/bissquit/storefront-auth/internal/identity"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements identity.Repository using PostgreSQL.
// Email uniqueness is enforced by the users_email_key constraint.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, phone, address, password_hash, answer, role, created_at`

// CreateUser creates a new user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, phone, address, password_hash, answer, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.Address,
		user.PasswordHash,
		user.Answer,
		int16(user.Role),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if !isValidID(id) {
		return nil, identity.ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// GetUserByEmailAndAnswer retrieves a user whose email and security answer both match.
func (r *Repository) GetUserByEmailAndAnswer(ctx context.Context, email, answer string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND answer = $2`
	user, err := scanUser(r.db.QueryRow(ctx, query, email, answer))
	if err != nil {
		return nil, fmt.Errorf("get user by email and answer: %w", err)
	}
	return user, nil
}

// UpdatePasswordHash replaces the password hash of a user. No other column changes.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if !isValidID(id) {
		return identity.ErrUserNotFound
	}

	query := `UPDATE users SET password_hash = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// scanUser scans a single user row. pgx.ErrNoRows becomes identity.ErrUserNotFound.
func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role int16
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Address,
		&user.PasswordHash,
		&user.Answer,
		&role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// isValidID reports whether id can match the uuid primary key at all.
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

//go:build integration

package postgres

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bissquit/storefront-auth/internal/domain"
	"github.com/bissquit/storefront-auth/internal/identity"
	pgutil "github.com/bissquit/storefront-auth/internal/pkg/postgres"
	"github.com/bissquit/storefront-auth/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := testutil.NewPostgresContainer(ctx)
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}

	if err := pgutil.Migrate(pgContainer.ConnectionString); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	testDB, err = pgutil.Connect(ctx, pgutil.Config{
		URL:             pgContainer.ConnectionString,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnectAttempts: 3,
	})
	if err != nil {
		log.Fatalf("connect: %v", err)
	}

	code := m.Run()

	testDB.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("terminate postgres: %v", err)
	}
	os.Exit(code)
}

func newTestUser() *domain.User {
	return &domain.User{
		Name:         "Alice",
		Email:        uuid.NewString() + "@example.com",
		Phone:        "555",
		Address:      "Addr",
		PasswordHash: "$2a$10$hash",
		Answer:       "blue",
		Role:         domain.RoleAdmin,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := NewRepository(testDB)
	ctx := context.Background()
	user := newTestUser()

	require.NoError(t, repo.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	found, err := repo.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, domain.RoleAdmin, found.Role)
	assert.Equal(t, "$2a$10$hash", found.PasswordHash)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
}

func TestRepository_NotFound(t *testing.T) {
	repo := NewRepository(testDB)
	ctx := context.Background()

	_, err := repo.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	_, err = repo.GetUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	_, err = repo.GetUserByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	err = repo.UpdatePasswordHash(ctx, uuid.NewString(), "x")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestRepository_DuplicateEmail(t *testing.T) {
	repo := NewRepository(testDB)
	ctx := context.Background()
	user := newTestUser()
	require.NoError(t, repo.CreateUser(ctx, user))

	dup := newTestUser()
	dup.Email = user.Email
	err := repo.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, identity.ErrEmailExists)
}

func TestRepository_ConcurrentDuplicateInsert(t *testing.T) {
	repo := NewRepository(testDB)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"
	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := newTestUser()
			user.Email = email
			errs[i] = repo.CreateUser(ctx, user)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		if err == nil {
			successes++
		} else if assert.ErrorIs(t, err, identity.ErrEmailExists) {
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestRepository_GetUserByEmailAndAnswer(t *testing.T) {
	repo := NewRepository(testDB)
	ctx := context.Background()
	user := newTestUser()
	require.NoError(t, repo.CreateUser(ctx, user))

	found, err := repo.GetUserByEmailAndAnswer(ctx, user.Email, "blue")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetUserByEmailAndAnswer(ctx, user.Email, "red")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestRepository_UpdatePasswordHash(t *testing.T) {
	repo := NewRepository(testDB)
	ctx := context.Background()
	user := newTestUser()
	require.NoError(t, repo.CreateUser(ctx, user))

	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "$2a$10$new"))

	found, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$new", found.PasswordHash)
	assert.Equal(t, user.Name, found.Name)
	assert.Equal(t, user.Answer, found.Answer)
	assert.Equal(t, user.Role, found.Role)
}

func TestRepository_CancelledContext(t *testing.T) {
	repo := NewRepository(testDB)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetUserByEmail(ctx, "a@example.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrUserNotFound)
}

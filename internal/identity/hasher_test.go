package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	passwords := []string{"pw1", "correct horse battery staple", "пароль", " "}
	for _, password := range passwords {
		digest, err := hasher.Hash(password)
		require.NoError(t, err)

		assert.NotEqual(t, password, digest)
		assert.True(t, hasher.Verify(password, digest), "password %q should verify", password)
		assert.False(t, hasher.Verify(password+"x", digest))
	}
}

func TestBcryptHasher_HashIsSalted(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("password123")
	require.NoError(t, err)
	second, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("password123", first))
	assert.True(t, hasher.Verify("password123", second))
}

func TestBcryptHasher_VerifyMismatch(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("pw1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		digest   string
	}{
		{"wrong password", "pw2", digest},
		{"empty password", "", digest},
		{"malformed digest", "pw1", "not-a-digest"},
		{"empty digest", "pw1", ""},
		{"plaintext stored as digest", "pw1", "pw1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, hasher.Verify(tt.password, tt.digest))
		})
	}
}

func TestBcryptHasher_LongPasswords(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	for _, n := range []int{72, 73, 80, 1000} {
		password := strings.Repeat("a", n)

		digest, err := hasher.Hash(password)
		require.NoError(t, err, "length %d", n)

		assert.True(t, hasher.Verify(password, digest), "length %d should verify", n)
		assert.False(t, hasher.Verify(password+"b", digest), "length %d with suffix", n)
	}
}

func TestBcryptHasher_LongPasswordsUseEveryByte(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	prefix := strings.Repeat("x", 72)

	digest, err := hasher.Hash(prefix + "tail-one")
	require.NoError(t, err)

	assert.True(t, hasher.Verify(prefix+"tail-one", digest))
	assert.False(t, hasher.Verify(prefix+"tail-two", digest))
	assert.False(t, hasher.Verify(prefix, digest))
}

func TestBcryptHasher_ShortPasswordsArePlainBcrypt(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("pw1")
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(digest), []byte("pw1")))
}

func TestBcryptHasher_HashFailure(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MaxCost + 1)

	digest, err := hasher.Hash("pw1")

	assert.Empty(t, digest)
	assert.ErrorIs(t, err, ErrHashing)
}

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}

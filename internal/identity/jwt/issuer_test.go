package jwt

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/bissquit/storefront-auth/internal/domain"
	"github.com/bissquit/storefront-auth/internal/identity"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a controllable time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestIssuer(t *testing.T, clock *fakeClock) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(Config{
		SecretKey: "test-secret-key",
		Now:       clock.Now,
	})
	require.NoError(t, err)
	return issuer
}

func TestNewIssuer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{SecretKey: "secret", TokenDuration: time.Hour}, false},
		{"default duration", Config{SecretKey: "secret"}, false},
		{"empty secret", Config{TokenDuration: time.Hour}, true},
		{"negative duration", Config{SecretKey: "secret", TokenDuration: -time.Hour}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer, err := NewIssuer(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, issuer)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, issuer)
		})
	}
}

func TestNewIssuer_DefaultDurationIsSevenDays(t *testing.T) {
	issuer, err := NewIssuer(Config{SecretKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, issuer.TokenDuration())
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	issuer := newTestIssuer(t, clock)

	for _, role := range []domain.Role{domain.RoleUser, domain.RoleAdmin} {
		token, err := issuer.Issue("user-123", role)
		require.NoError(t, err)

		subject, gotRole, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", subject)
		assert.Equal(t, role, gotRole)
	}
}

func TestIssuer_EmbedsExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	issuer := newTestIssuer(t, clock)

	token, err := issuer.Issue("user-123", domain.RoleUser)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwtlib.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.True(t, clock.now.Add(7*24*time.Hour).Equal(claims.ExpiresAt.Time))
	assert.True(t, clock.now.Equal(claims.IssuedAt.Time))
	assert.NotEmpty(t, claims.ID)
}

func TestIssuer_Expiry(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{"just issued", 0, nil},
		{"one second before expiry", 7*24*time.Hour - time.Second, nil},
		{"exactly at expiry", 7 * 24 * time.Hour, identity.ErrTokenExpired},
		{"long after expiry", 30 * 24 * time.Hour, identity.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: issuedAt}
			issuer := newTestIssuer(t, clock)

			token, err := issuer.Issue("user-123", domain.RoleUser)
			require.NoError(t, err)

			clock.now = issuedAt.Add(tt.elapsed)
			subject, _, err := issuer.Verify(token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, subject)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-123", subject)
		})
	}
}

func TestIssuer_SignatureBitFlip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	issuer := newTestIssuer(t, clock)

	token, err := issuer.Issue("user-123", domain.RoleAdmin)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for bit := 0; bit < len(signature)*8; bit++ {
		flipped := make([]byte, len(signature))
		copy(flipped, signature)
		flipped[bit/8] ^= 1 << (bit % 8)

		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(flipped)

		_, _, err := issuer.Verify(tampered)
		require.ErrorIs(t, err, identity.ErrTokenInvalid, "bit %d", bit)
	}
}

func TestIssuer_RejectsInvalidTokens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	issuer := newTestIssuer(t, clock)

	otherIssuer, err := NewIssuer(Config{SecretKey: "other-secret", Now: clock.Now})
	require.NoError(t, err)
	foreign, err := otherIssuer.Issue("user-123", domain.RoleAdmin)
	require.NoError(t, err)

	noneToken, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwtlib.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: "user-123"},
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	noSubject, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	unknownRole, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		Role: domain.Role(42),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwtlib.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "abc.def"},
		{"foreign key", foreign},
		{"alg none", noneToken},
		{"missing expiry", noExpiry},
		{"missing subject", noSubject},
		{"unknown role", unknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, _, err := issuer.Verify(tt.token)
			assert.ErrorIs(t, err, identity.ErrTokenInvalid)
			assert.Empty(t, subject)
		})
	}
}

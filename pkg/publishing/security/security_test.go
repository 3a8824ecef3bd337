package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tendant/simple-publish/pkg/publishing"
)

func TestJWTIssuer(t *testing.T) {
	user := &publishing.AdminUser{ID: "u1", Email: "admin@example.com", AllowedApplicationIDs: []string{"app-1", "app-2"}}

	t.Run("requires secret", func(t *testing.T) {
		_, err := NewJWTIssuer("", time.Hour)
		assert.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		issuer, err := NewJWTIssuer("s3cret", time.Hour)
		require.NoError(t, err)

		token, err := issuer.Generate(user)
		require.NoError(t, err)
		assert.Len(t, strings.Split(token, "."), 3)

		claims, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Subject)
		assert.Equal(t, "admin@example.com", claims.Email)
		assert.Equal(t, []string{"app-1", "app-2"}, claims.AllowedApplicationIDs)
	})

	t.Run("expired", func(t *testing.T) {
		issuer, err := NewJWTIssuer("s3cret", time.Minute)
		require.NoError(t, err)
		issued := time.Now().Add(-time.Hour)
		issuer.now = func() time.Time { return issued }

		token, err := issuer.Generate(user)
		require.NoError(t, err)

		issuer.now = time.Now
		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		a, _ := NewJWTIssuer("one", time.Hour)
		b, _ := NewJWTIssuer("two", time.Hour)

		token, err := a.Generate(user)
		require.NoError(t, err)
		_, err = b.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
	})

	t.Run("requires issuer and audience", func(t *testing.T) {
		issuer, _ := NewJWTIssuer("s3cret", time.Hour)
		sign := func(iss string, aud ...string) string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
				Email: "admin@example.com",
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    iss,
					Audience:  aud,
					Subject:   "u1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
				},
			}).SignedString([]byte("s3cret"))
			require.NoError(t, err)
			return token
		}

		_, err := issuer.Parse(sign(""))
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
		_, err = issuer.Parse(sign(TokenIssuer, "simple-publish-files"))
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidAudience)
		_, err = issuer.Parse(sign("someone-else", AccessAudience))
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
		_, err = issuer.Parse(sign(TokenIssuer, AccessAudience))
		assert.NoError(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		issuer, _ := NewJWTIssuer("s3cret", time.Hour)
		_, err := issuer.Parse("not-a-token")
		assert.Error(t, err)
	})

	t.Run("no tenants encodes empty list", func(t *testing.T) {
		issuer, _ := NewJWTIssuer("s3cret", time.Hour)
		token, err := issuer.Generate(&publishing.AdminUser{ID: "u2", Email: "x@y"})
		require.NoError(t, err)
		claims, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Empty(t, claims.AllowedApplicationIDs)
	})
}

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("Admin123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Admin123!", hash)

	assert.True(t, h.Matches("Admin123!", hash))
	assert.False(t, h.Matches("admin123!", hash))
	assert.False(t, h.Matches("Admin123!", "not-a-hash"))
}

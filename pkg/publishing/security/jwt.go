package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tendant/simple-publish/pkg/publishing"
)

// DefaultTokenTTL is the lifetime of an access token.
const DefaultTokenTTL = 120 * time.Minute

const (
	// TokenIssuer is the iss claim of every access token.
	TokenIssuer = "simple-publish"
	// AccessAudience is the aud claim Parse requires. Tokens minted for other
	// purposes with the same key never pass as admin access tokens.
	AccessAudience = "simple-publish-admin"
)

// claims is the signed payload: sub, email, applicationIds, iat and exp.
type claims struct {
	Email          string   `json:"email"`
	ApplicationIDs []string `json:"applicationIds"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 access tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer returns an issuer for secret. A non-positive ttl uses DefaultTokenTTL.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Generate issues a token for user carrying its allowed application ids.
func (j *JWTIssuer) Generate(user *publishing.AdminUser) (string, error) {
	now := j.now()
	c := claims{
		Email:          user.Email,
		ApplicationIDs: user.AllowedApplicationIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{AccessAudience},
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	if c.ApplicationIDs == nil {
		c.ApplicationIDs = []string{}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, expiry, issuer and audience of token and
// returns its payload.
func (j *JWTIssuer) Parse(token string) (*publishing.TokenClaims, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(AccessAudience),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("parse token: invalid token")
	}

	return &publishing.TokenClaims{
		Subject:               c.Subject,
		Email:                 c.Email,
		AllowedApplicationIDs: c.ApplicationIDs,
	}, nil
}

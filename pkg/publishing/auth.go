package publishing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TokenTypeBearer is the token type reported by Login.
const TokenTypeBearer = "Bearer"

const invalidCredentials = "invalid credentials"

// Login verifies credentials and issues an access token. An unknown email and
// a wrong password fail with the same message.
func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthToken, error) {
	const op = "login"

	user, err := s.admins.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, unauthorized(op, invalidCredentials, nil)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !s.passwords.Matches(req.Password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "login rejected", "user_id", user.ID)
		return nil, unauthorized(op, invalidCredentials, nil)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("%s: issue token: %w", op, err)
	}
	return &AuthToken{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

func (s *service) ParseToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, unauthorized("parse token", "invalid token", err)
	}
	return claims, nil
}

// Package auth issues and validates the bearer tokens of the core API.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gymdesk/internal/permission"
	apperrors "gymdesk/pkg/errors"
	"gymdesk/pkg/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the account fields needed to rebuild the actor.
type Claims struct {
	UserID string     `json:"user_id"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenExpiry is used when no TTL is configured.
const TokenExpiry = 12 * time.Hour

const issuer = "gymdesk"

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = TokenExpiry
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken signs a token with a unique JTI for actor.
func (i *Issuer) GenerateToken(actor permission.Actor) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	now := i.now()
	claims := Claims{
		UserID: actor.ID,
		Name:   actor.Name,
		Role:   actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a token, returning the claims.
func (i *Issuer) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (c *Claims) Actor() permission.Actor {
	return permission.Actor{ID: c.UserID, Name: c.Name, Role: c.Role}
}

func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type contextKey string

const actorKey contextKey = "actor"

func WithActor(ctx context.Context, actor permission.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the authenticated actor stored by the auth middleware.
func ActorFrom(ctx context.Context) (permission.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(permission.Actor)
	return actor, ok
}

// RequireActor is ActorFrom for handlers: a missing actor is a 401.
func RequireActor(ctx context.Context) (permission.Actor, error) {
	actor, ok := ActorFrom(ctx)
	if !ok || actor.ID == "" {
		return permission.Actor{}, apperrors.Unauthorized("Authentication required")
	}
	return actor, nil
}

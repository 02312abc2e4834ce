package auth

import (
	"context"
	"testing"
	"time"

	"gymdesk/internal/permission"
	"gymdesk/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key-0123"

func TestGenerateAndValidateToken(t *testing.T) {
	issuer := NewIssuer(secret, time.Hour)
	actor := permission.Actor{ID: "3-1", Name: "김선생", Role: model.RoleTeacher}

	token, err := issuer.GenerateToken(actor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, claims.Actor())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewIssuer("secret-one-0000000", time.Hour).GenerateToken(permission.Actor{ID: "x", Role: model.RoleMaster})
	require.NoError(t, err)

	_, err = NewIssuer("secret-two-0000000", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := NewIssuer(secret, time.Hour).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	issuer := NewIssuer(secret, time.Minute)
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	token, err := issuer.GenerateToken(permission.Actor{ID: "3-1", Role: model.RoleTeacher})
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	actor := permission.Actor{ID: "5-2", Role: model.RoleManager}
	got, ok := ActorFrom(WithActor(context.Background(), actor))
	require.True(t, ok)
	assert.Equal(t, actor, got)
}

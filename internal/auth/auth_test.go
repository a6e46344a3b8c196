package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/database/databasetest"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)

	token, err := m.GenerateToken(42, "owner@shop.test")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "owner@shop.test", claims.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	m := NewTokenManager("s3cret", time.Hour)
	good, err := m.GenerateToken(1, "a@shop.test")
	require.NoError(t, err)

	expired := NewTokenManager("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken(1, "a@shop.test")
	require.NoError(t, err)

	otherKey, err := NewTokenManager("other", time.Hour).GenerateToken(1, "a@shop.test")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":   "not-a-token",
		"expired":   old,
		"wrong key": otherKey,
		"none alg":  none,
		"truncated": good[:len(good)-4],
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestUserStore(t *testing.T) {
	s := NewUserStore(databasetest.Open(t))
	ctx := context.Background()

	u, err := s.Register(ctx, " Owner@Shop.test ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.test", u.Email)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	_, err = s.Register(ctx, "owner@shop.test", "another one")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = s.Register(ctx, "", "pw")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// bcrypt cannot hash more than 72 bytes
	_, err = s.Register(ctx, "long@shop.test", strings.Repeat("a", 80))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := s.Authenticate(ctx, "OWNER@shop.test", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Authenticate(ctx, "owner@shop.test", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = s.Authenticate(ctx, "nobody@shop.test", "correct horse")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	me, err := s.User(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, me.Email)

	_, err = s.User(ctx, u.ID+1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

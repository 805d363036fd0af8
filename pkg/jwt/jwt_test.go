package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/infrastructure"
)

func TestJWT_RoundTrip(t *testing.T) {
	j := NewJWT("secret", 3600)

	token, err := j.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestJWT_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWT("other", 3600).GenerateToken("user-1")
	require.NoError(t, err)

	_, err = NewJWT("secret", 3600).ValidateToken(token)
	assert.ErrorIs(t, err, infrastructure.ErrInvalidToken)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("secret", 60)
	j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := j.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = NewJWT("secret", 60).ValidateToken(token)
	assert.ErrorIs(t, err, infrastructure.ErrTokenExpired)
}

func TestJWT_Missing(t *testing.T) {
	_, err := NewJWT("secret", 60).ValidateToken("")
	assert.ErrorIs(t, err, infrastructure.ErrMissingToken)
}

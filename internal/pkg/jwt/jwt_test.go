package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParseRoundTrip(t *testing.T) {
	iss := NewIssuer("s3cret")
	token, err := iss.Sign("owner", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseRejectsForeignSecretAndExpiry(t *testing.T) {
	token, err := NewIssuer("a").Sign("owner", "admin", time.Hour)
	require.NoError(t, err)
	_, err = NewIssuer("b").Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	iss := NewIssuer("a")
	expired, err := iss.Sign("owner", "admin", time.Minute)
	require.NoError(t, err)
	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = iss.Parse(expired)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

package auth

import (
	"testing"
	"time"

	"taste-trip/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier(config.AuthConfig{JWTSecret: "secret", Issuer: "taste-trip"})

	token, err := v.Issue(Identity{Subject: "u1", Email: "u1@example.com", Name: "U1"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{Subject: "u1", Email: "u1@example.com", Name: "U1"}, id)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier(config.AuthConfig{JWTSecret: "secret", Issuer: "taste-trip"})

	expired, err := v.Issue(Identity{Subject: "u1"}, -time.Minute)
	require.NoError(t, err)

	other, err := NewVerifier(config.AuthConfig{JWTSecret: "other", Issuer: "taste-trip"}).Issue(Identity{Subject: "u1"}, time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := NewVerifier(config.AuthConfig{JWTSecret: "secret", Issuer: "someone"}).Issue(Identity{Subject: "u1"}, time.Hour)
	require.NoError(t, err)

	noSubject, err := v.Issue(Identity{}, time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "taste-trip"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "taste-trip",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":      expired,
		"wrong secret": other,
		"wrong issuer": wrongIssuer,
		"no subject":   noSubject,
		"no expiry":    noExpiry,
		"wrong method": hs512,
		"garbage":      "not-a-token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.Error(t, err)
		})
	}
}

func TestDisabledVerifier(t *testing.T) {
	v := NewVerifier(config.AuthConfig{})
	assert.False(t, v.Enabled())

	_, err := v.Verify("anything")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}

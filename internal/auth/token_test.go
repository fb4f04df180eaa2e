package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testUser() User {
	return User{
		ID:            "u-1",
		Name:          "Jane",
		Email:         "jane@example.com",
		AffiliateCode: "m5xyzab12",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	maker := NewTokenMaker("test-secret", time.Hour)

	token, err := maker.Create(testUser(), true)
	require.NoError(t, err)

	claims, err := maker.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, "m5xyzab12", claims.AffiliateCode)
	require.True(t, claims.IsAdmin)
}

func TestTokenExpired(t *testing.T) {
	maker := NewTokenMaker("test-secret", -time.Minute)

	token, err := maker.Create(testUser(), false)
	require.NoError(t, err)

	_, err = maker.Verify(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenWrongSecret(t *testing.T) {
	maker := NewTokenMaker("test-secret", time.Hour)
	other := NewTokenMaker("different-secret", time.Hour)

	token, err := maker.Create(testUser(), false)
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	maker := NewTokenMaker("test-secret", time.Hour)
	_, err := maker.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)
	require.True(t, CheckPassword("hunter22", hash))
	require.False(t, CheckPassword("hunter23", hash))
}

func TestNewAffiliateCode(t *testing.T) {
	a := NewAffiliateCode()
	b := NewAffiliateCode()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
	require.GreaterOrEqual(t, len(a), 10)
}

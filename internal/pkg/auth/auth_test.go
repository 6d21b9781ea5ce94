package auth

import (
	"testing"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			Issuer:             "zelie-test",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())

	pair, err := m.GenerateTokenPair("user-1", "a@b.in")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.in", claims.Email)
	assert.NotEmpty(t, claims.ID)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, refresh.ID)
}

func TestJWTManager_RejectsWrongType(t *testing.T) {
	m := NewJWTManager(testConfig())
	pair, err := m.GenerateTokenPair("user-1", "a@b.in")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsForeignSecretAndExpiry(t *testing.T) {
	cfg := testConfig()
	m := NewJWTManager(cfg)
	pair, err := m.GenerateTokenPair("user-1", "a@b.in")
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	_, err = NewJWTManager(other).ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTManager(cfg)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateTokenPair("user-1", "a@b.in")
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(old.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
}

func TestPasswordManager(t *testing.T) {
	p := NewPasswordManager(testConfig())

	_, err := p.HashPassword("12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := p.HashPassword("secret1")
	require.NoError(t, err)
	assert.NoError(t, p.VerifyPassword("secret1", hash))
	assert.ErrorIs(t, p.VerifyPassword("secret2", hash), ErrPasswordMismatch)
}

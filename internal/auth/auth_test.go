package auth

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/reviewshelf/reviewshelf-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 2000))
	assert.Error(t, err)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("same password")
	require.NoError(t, err)
	h2, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	ok, err := VerifyPassword("not a real hash", "password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testTokenService(t *testing.T) *TokenService {
	t.Helper()

	key, err := hex.DecodeString("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	svc, err := NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)
	return svc
}

func testUser() *domain.User {
	return &domain.User{
		Record: domain.Record{ID: "user-001"},
		Email:  "reader@example.com",
		Name:   "Test Reader",
	}
}

func TestNewTokenService_BadKeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := testTokenService(t)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-001", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "user-001", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	svc := testTokenService(t)

	_, err := svc.VerifyAccessToken("v4.local.garbage")
	assert.Error(t, err)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	key := make([]byte, 32)
	svc, err := NewTokenService(key, -time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshToken_GenerateAndHash(t *testing.T) {
	svc := testTokenService(t)

	tok1, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	tok2, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok2)

	// Hashing is deterministic and never returns the input.
	h := HashRefreshToken(tok1)
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshToken(tok1))
	assert.NotEqual(t, tok1, h)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	key1, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, key1, 32)

	// Second load returns the same key.
	key2, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	// Key file has restricted permissions.
	info, err := os.Stat(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_RejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.key"), []byte("not hex"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}

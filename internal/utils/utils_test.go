package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("pw1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "pw1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, VerifyPassword(hash, "pw1"))
	assert.False(t, VerifyPassword(hash, "pw2"))
}

func TestHashPassword_SaltPerRecord(t *testing.T) {
	a, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	assert.False(t, VerifyPassword("not-a-hash", "pw"))
	assert.False(t, VerifyPassword("", ""))
}

func TestNewSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	require.NoError(t, err)
	b, err := NewSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.True(t, IsWellFormedToken(a))
	assert.NotEqual(t, a, b)
}

func TestIsWellFormedToken(t *testing.T) {
	valid := strings.Repeat("ab", 32)
	cases := map[string]bool{
		valid:                        true,
		"":                           false,
		valid[:63]:                   false,
		valid + "a":                  false,
		strings.Repeat("AB", 32):     false,
		strings.Repeat("zz", 32):     false,
		"' OR 1=1 --" + valid[:53]:   false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsWellFormedToken(in), "input %q", in)
	}
}

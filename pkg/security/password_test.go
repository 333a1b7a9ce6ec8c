package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/vendorverse-backend/pkg/config"
)

var cheap = config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("very-secure-password", cheap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"), hash)

	ok, err := VerifyPassword("very-secure-password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("bogus-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same-password", cheap)
	require.NoError(t, err)
	b, err := HashPassword("same-password", cheap)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$a2V5",
	} {
		_, err := VerifyPassword("irrelevant", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}
}

func TestWeakPassword(t *testing.T) {
	_, err := HashPassword("12345", cheap)
	assert.ErrorIs(t, err, ErrWeakPassword)
	// six runes, more than six bytes
	assert.NoError(t, CheckPasswordStrength("ñañaña"))
}

func TestNeedsRehash(t *testing.T) {
	strong := cheap
	strong.ArgonMemoryKB = 16384
	strong.ArgonTime = 2

	hash, err := HashPassword("tomato-farmer", cheap)
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash, cheap))
	assert.True(t, NeedsRehash(hash, strong))
	assert.True(t, NeedsRehash("garbage", cheap))
}

func TestParamsAreBounded(t *testing.T) {
	p := paramsFor(config.PasswordConfig{})
	assert.Equal(t, uint32(8), p.memory)
	assert.Equal(t, uint32(1), p.time)
	assert.Equal(t, uint8(1), p.threads)
	assert.Equal(t, uint32(16), p.keyLen)
}

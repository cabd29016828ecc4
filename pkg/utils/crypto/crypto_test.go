package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	for _, plaintext := range []string{
		"ya29.a0AfH6SMBexampleaccesstoken",
		"",
		"日本語のセッションID",
		strings.Repeat("x", 1000),
	} {
		encoded, err := Encrypt(plaintext, "test-secret")
		require.NoError(t, err)

		decoded, err := Decrypt(encoded, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, plaintext, decoded)
	}
}

func TestEncrypt_Format(t *testing.T) {
	encoded, err := Encrypt("token", "secret")
	require.NoError(t, err)

	parts := strings.SplitN(encoded, ":", 2)
	require.Len(t, parts, 2)
	assert.Len(t, parts[0], 32) // 16-byte IV, hex encoded
	assert.NotEmpty(t, parts[1])
}

func TestEncrypt_RandomIV(t *testing.T) {
	a, err := Encrypt("token", "secret")
	require.NoError(t, err)
	b, err := Encrypt("token", "secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_WrongKey(t *testing.T) {
	encoded, err := Encrypt("token", "secret")
	require.NoError(t, err)

	decoded, err := Decrypt(encoded, "other-secret")
	if err == nil {
		// CBC padding may accidentally validate; the plaintext must
		// still not survive a wrong key.
		assert.NotEqual(t, "token", decoded)
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	for _, input := range []string{"", "nocolon", "zz:zz", "abcd:1234"} {
		_, err := Decrypt(input, "secret")
		assert.Error(t, err, "input %q", input)
	}
}

// Package crypto protects OAuth tokens and session credentials at rest.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored values use AES-256-CBC with a random IV, encoded as
// "ivhex:cipherhex" so a value's key can be rotated by re-encrypting.

const (
	keySize    = 32
	kdfRounds  = 4096
	kdfSalt    = "mailwiki-token-key"
	sepEncoded = ":"
)

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

func deriveKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), []byte(kdfSalt), kdfRounds, keySize, sha256.New)
}

// Encrypt encrypts plaintext with a key derived from secret.
func Encrypt(plaintext, secret string) (string, error) {
	block, err := aes.NewCipher(deriveKey(secret))
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + sepEncoded + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It fails on truncated or foreign input.
func Decrypt(encoded, secret string) (string, error) {
	parts := strings.SplitN(encoded, sepEncoded, 2)
	if len(parts) != 2 {
		return "", ErrMalformedCiphertext
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedCiphertext
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrMalformedCiphertext
	}

	block, err := aes.NewCipher(deriveKey(secret))
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrMalformedCiphertext
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrMalformedCiphertext
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrMalformedCiphertext
		}
	}
	return data[:len(data)-n], nil
}

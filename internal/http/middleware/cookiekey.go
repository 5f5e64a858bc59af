package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"golang.org/x/crypto/hkdf"
)

const cookieKeyInfo = "ocrweb cookie encryption v1"

// CookieKey derives the base64 AES-256 key for encryptcookie from secret with
// HKDF-SHA256. An empty secret yields a random key, so cookies do not survive
// a restart.
func CookieKey(secret string) (string, error) {
	if secret == "" {
		return encryptcookie.GenerateKey(), nil
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(cookieKeyInfo)), key); err != nil {
		return "", fmt.Errorf("derive cookie key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"math/big"
)

const (
	secureTokenBytes   = 32 // 256 bits
	recoveryCodeLength = 8
	emailMfaCodeDigits = 6

	RecoveryCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateSecureToken returns 32 random bytes, base64url encoded without padding.
func GenerateSecureToken() (string, error) {
	buf := make([]byte, secureTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the lookup key for every stored token and code.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// TokenMatches compares plaintext against a stored HashToken digest in constant time.
func TokenMatches(plaintext, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(plaintext)), []byte(hash)) == 1
}

// GenerateRecoveryCodes draws n independent 8 character codes from A-Z0-9.
// Codes are not checked for collisions.
func GenerateRecoveryCodes(n int) ([]string, error) {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		code, err := randomString(RecoveryCodeAlphabet, recoveryCodeLength)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func GenerateEmailMfaCode() (string, error) {
	return randomString("0123456789", emailMfaCodeDigits)
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

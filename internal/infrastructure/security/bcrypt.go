package security

import (
	"crypto/sha256"
	"encoding/base64"
	"unicode/utf8"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes and x/crypto refuses anything longer.
const bcryptMaxBytes = 72

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if utf8.RuneCountInString(password) > MaxPasswordLength {
		return "", domain.ErrPasswordTooLong(MaxPasswordLength)
	}
	b, err := bcrypt.GenerateFromPassword(prepare(password), h.cost)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A malformed hash is a mismatch.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(password)) == nil
}

// prepare keeps long passwords fully significant by digesting them down
// below the bcrypt input limit.
func prepare(password string) []byte {
	if len(password) <= bcryptMaxBytes {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

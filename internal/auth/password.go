package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 1000
	hashKeyLength  = 64
)

// PasswordHasher derives credentials with PBKDF2-SHA512. The salt comes from
// configuration at construction; hashing is deterministic for a given salt,
// so the same password always verifies against its stored hash.
type PasswordHasher struct {
	salt []byte
}

func NewPasswordHasher(salt string) *PasswordHasher {
	return &PasswordHasher{salt: []byte(salt)}
}

func (h *PasswordHasher) Hash(password string) string {
	key := pbkdf2.Key([]byte(password), h.salt, hashIterations, hashKeyLength, sha512.New)
	return hex.EncodeToString(key)
}

func (h *PasswordHasher) Compare(password, hashed string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(password)), []byte(hashed)) == 1
}

package service

import (
	"encoding/hex"
	"time"

	dom "microblog/internal/domain"

	"golang.org/x/crypto/sha3"
)

// NewSalt derives a per-user salt from the creation instant and the
// plaintext. It is generated exactly once, at signup, and never again;
// password changes keep the original salt.
func NewSalt(password string) string {
	return saltedDigest(time.Now().UTC().Format(time.RFC3339Nano), password)
}

// PasswordDigest returns the stored form of a password: the SHA3-256 digest
// of salt joined to the plaintext. Deterministic for the same inputs.
func PasswordDigest(salt, password string) string {
	return saltedDigest(salt, password)
}

// CheckPassword reports whether guess is u's password.
func CheckPassword(u dom.User, guess string) bool {
	return PasswordDigest(u.Salt, guess) == u.EncryptedPassword
}

func saltedDigest(salt, s string) string {
	sum := sha3.Sum256([]byte(salt + "--" + s))
	return hex.EncodeToString(sum[:])
}

package domain

import "time"

// User is the domain entity for a user account.
// Salt is generated once at signup and never changes; EncryptedPassword is
// the salted digest of the password and is recomputed when the password is.
type User struct {
	ID                int64
	Name              string
	Email             string
	Salt              string
	EncryptedPassword string
	Admin             bool
	CreatedAt         time.Time
}

package domain

import "time"

// Micropost is a short post owned by exactly one user.
// UserID is a lookup key into users; the row goes away with its owner.
type Micropost struct {
	ID        int64
	Content   string
	UserID    int64
	CreatedAt time.Time
}

package dto

import "time"

// CreateMicropostRequest is the JSON body for POST /microposts.
// The owner comes from the session, never from the body.
type CreateMicropostRequest struct {
	Content string `json:"content"`
}

// MicropostResponse is the public shape of a micropost.
type MicropostResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListMicropostsResponse is a page of a user's feed, newest first.
type ListMicropostsResponse struct {
	Items []MicropostResponse `json:"items"`
	Page  int                 `json:"page"`
}

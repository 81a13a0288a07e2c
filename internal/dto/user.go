package dto

import "time"

// SignupRequest is the JSON body for POST /auth/register.
// These four fields are the only ones a caller can ever set on a user;
// admin and id are not bindable. Field checks live in the service so the
// response can report every violated field at once.
type SignupRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// UpdateUserRequest is the JSON body for PATCH /users/{id}.
// A blank password means "keep the current one".
type UpdateUserRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsersResponse is the paginated users index.
type ListUsersResponse struct {
	Items []UserResponse `json:"items"`
	Page  int            `json:"page"`
}

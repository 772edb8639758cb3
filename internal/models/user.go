package models

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Identity is what a verified session says about the caller.
type Identity struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type UserResponse struct {
	OK   bool     `json:"ok,omitempty"`
	User Identity `json:"user"`
}

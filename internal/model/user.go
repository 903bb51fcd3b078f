package model

import "time"

// User represents a registered account in the database.
type User struct {
	ID                int64
	Email             string
	AuthHash          string
	PreferredProvider string
	PreferredLanguage string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	PreferredProvider string `json:"preferred_ai_provider,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	PreferredProvider string    `json:"preferred_ai_provider"`
	PreferredLanguage string    `json:"preferred_language"`
	CreatedAt         time.Time `json:"created_at"`
}

// UpdatePreferencesRequest updates a user's provider and language preferences.
// Empty fields are left unchanged.
type UpdatePreferencesRequest struct {
	PreferredProvider string `json:"preferred_ai_provider,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
}

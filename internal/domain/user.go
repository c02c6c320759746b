package domain

import "time"

// User represents an authenticated user account in the system.
type User struct {
	Record
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Name         string         `json:"name"`
	ProfileImage *ImageFileInfo `json:"profile_image,omitempty"`
	LastLoginAt  time.Time      `json:"last_login_at,omitzero"`
}

// Sanitized returns a copy of the user safe for API responses.
// The password hash must be stored, so it can't be excluded from JSON
// wholesale; it is cleared here instead.
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// AsProfile converts a user to its public profile form.
func (u *User) AsProfile() *Profile {
	p := &Profile{
		ID:   u.ID,
		Name: u.Name,
	}
	if u.ProfileImage != nil {
		p.ProfileImageURL = "/avatars/" + u.ProfileImage.Filename
	}
	return p
}

// Profile is the public subset of a user shown alongside books and reviews.
type Profile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Session represents an active user session with refresh token.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

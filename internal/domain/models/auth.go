package models

import "github.com/golang-jwt/jwt/v5"

// Identity is the verified user behind a request.
// Issued by the external auth provider; never persisted here.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	Phone                string                 `json:"phone"`
	AppMetadata          map[string]interface{} `json:"app_metadata"`
	UserMetadata         map[string]interface{} `json:"user_metadata"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	AAL                  string                 `json:"aal"`  // Authentication Assurance Level: "aal1" or "aal2"
	SessionID            string                 `json:"session_id"`
	IsAnonymous          bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// Identity converts verified claims into an Identity
func (c *SupabaseClaims) Identity() *Identity {
	return &Identity{
		UserID: c.Subject,
		Email:  c.Email,
		Role:   c.Role,
	}
}

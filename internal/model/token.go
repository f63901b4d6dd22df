package model

import "time"

// Token models an entry in the `tokens` table.  A token string is issued
// once on login and is never reused, even after it expires or is revoked.
//
// Fields:
//  ID        – surrogate primary key.
//  Username  – owner of the session (references credentials.username).
//  Token     – opaque random string presented as a bearer credential.
//  CreatedAt – issue time.
//  ExpiresAt – CreatedAt plus the validity window; always after CreatedAt.
type Token struct {
    ID        uint64    // tokens.id
    Username  string    // tokens.username
    Token     string    // tokens.token
    CreatedAt time.Time // tokens.created_at
    ExpiresAt time.Time // tokens.expires_at
}

// ValidAt reports whether the token is still inside its validity window at
// now.  A token is expired from ExpiresAt onward.
func (t Token) ValidAt(now time.Time) bool {
    return now.Before(t.ExpiresAt)
}

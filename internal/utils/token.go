package utils // package utils provides helpers for session token creation and hashing

import (
    "crypto/rand"  // secure random number generation
    "encoding/hex" // hex encoding of token bytes
)

// SessionTokenBytes is the amount of entropy in a session token.  The wire
// form is the hex encoding, twice as long.
const SessionTokenBytes = 32

// NewSessionToken returns a fresh opaque bearer token: 32 bytes from
// crypto/rand encoded as 64 lowercase hex characters.  Tokens are neither
// sequential nor derived from the username, so they cannot be guessed.
func NewSessionToken() (string, error) {
    return randomHex(SessionTokenBytes)
}

// IsWellFormedToken reports whether s has the exact shape produced by
// NewSessionToken.  Callers use it to reject garbage before hitting storage.
func IsWellFormedToken(s string) bool {
    if len(s) != 2*SessionTokenBytes {
        return false
    }
    for i := 0; i < len(s); i++ {
        c := s[i]
        if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
            return false
        }
    }
    return true
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.  If the random number generator
// fails, an error is returned.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}

package model

// Credential represents a row in the `credentials` table.  One row exists
// per username; it is written once on registration and never updated.
//
// Fields:
//  Username     – primary key, unique across the service.
//  PasswordHash – bcrypt hash (salt embedded).  Never the plaintext and
//                 never written to logs or responses.
type Credential struct {
    Username     string // credentials.username
    PasswordHash string // credentials.password_hash
}

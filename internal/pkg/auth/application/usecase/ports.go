package usecase

import "time"

// PasswordHasher hashes and checks user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) bool
}

// TokenService turns a session id into a bearer token and back.
type TokenService interface {
	Issue(sessionID, userID string, ttl time.Duration) (string, error)
	Parse(token string) (sessionID string, err error)
}

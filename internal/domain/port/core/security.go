package core

// PasswordHasher hashes and verifies user passwords
type PasswordHasher interface {
	// Hash returns a salted hash of password
	Hash(password string) (string, error)
	// Check reports whether password matches hash
	Check(password, hash string) bool
}

// TokenGenerator produces opaque, unguessable session tokens
type TokenGenerator interface {
	NewToken() string
}

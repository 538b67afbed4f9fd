package model

// PasswordHasher hashes credentials and verifies presented passwords
// against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

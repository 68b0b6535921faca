package ports

// PasswordHasher hashes and verifies passwords with a salted one-way function.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns false for a mismatch and domain.ErrCorruptHash only when
	// hash cannot be parsed.
	Verify(plaintext, hash string) (bool, error)
}

package service

type PasswordService interface {
	// Hash returns a self-describing encoded hash (salt and cost included).
	Hash(password string) (string, error)
	// Verify reports whether password matches encoded, and whether the stored
	// hash was produced with parameters older than the current policy.
	Verify(password, encoded string) (ok bool, rehashNeeded bool)
}

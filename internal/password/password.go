package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

var _ model.PasswordHasher = (*Hasher)(nil)

// Hasher wraps bcrypt with a configurable cost factor. Hashing embeds a
// fresh salt, so two hashes of the same password never match byte for
// byte; Verify is the only valid comparison.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given cost. Costs outside the
// range bcrypt accepts fall back to the library default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash produces the one-way hash of a password.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. The comparison is
// constant time within bcrypt.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

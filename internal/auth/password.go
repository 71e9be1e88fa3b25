// Password hashing for accounts registered with an account name and
// password. GitHub accounts have no password hash at all.
//
// WHY BCRYPT?
// bcrypt is deliberately slow. A login pays a fraction of a second once;
// an attacker holding a dumped users table pays it for every guess.
//
// bcrypt also:
//   - generates a random salt per hash, so equal passwords hash differently
//   - embeds the salt and cost in its output, so password_hash is one column
//   - lets the work factor ("cost") grow as hardware gets faster
//
// Hash format, as stored in users.password_hash:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor for production hashing.
//
// COST TUNING RULE OF THUMB:
// pick the cost at which one hash takes roughly 200-300ms on the production
// machine. Each +1 doubles the time. Lower makes stolen hashes cheap to
// crack; higher makes login slow and lets a burst of logins eat the CPU.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification. The cost is a
// field so tests can hash at the bcrypt minimum.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with the given cost.
// Do not use outside tests; pass bcrypt.MinCost (4).
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the bcrypt hash of plaintext. The salt and cost are embedded
// in the result, so it can be stored as-is.
//
// bcrypt only looks at the first 72 bytes; longer input is rejected rather
// than silently truncated.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// ErrInvalidPassword is returned by Verify on a mismatch.
var ErrInvalidPassword = errors.New("auth: invalid password")

// Verify returns nil if plaintext matches hash.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword compares in constant time, so response
// latency says nothing about how much of a guess was right.
//
// Usage:
//
//	if err := ps.Verify(user.PasswordHash, req.Password); errors.Is(err, ErrInvalidPassword) {
//	    // wrong password
//	}
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

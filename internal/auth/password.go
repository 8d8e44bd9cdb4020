// Package auth implements password hashing and verification.
//
// New hashes use a versioned, self-describing format so the scheme can evolve
// without a data migration:
//
//	pbkdf2$<iterations>$<base64 salt>$<base64 derived key>
//
// Verification also accepts the legacy scheme (a plain lowercase hex SHA-256
// digest, no salt) so accounts created before the migration keep working.
// A legacy hash is only upgraded when the user changes their password; there
// is no rehash-on-login.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// schemeTag identifies the current hash format.
	schemeTag = "pbkdf2"

	// defaultIterations is the PBKDF2 iteration count for new hashes.
	// The count is embedded in every hash string, so it can be raised later
	// without breaking verification of existing records.
	defaultIterations = 100_000

	saltLen = 16
	keyLen  = 32
)

// PasswordService hashes and verifies passwords.
//
// The iteration count is a struct field rather than a constant baked into the
// methods so tests can use a low count instead of paying for 100k rounds on
// every hash.
type PasswordService struct {
	iterations int
}

// NewPasswordService returns a PasswordService with the production iteration
// count.
func NewPasswordService() *PasswordService {
	return &PasswordService{iterations: defaultIterations}
}

// NewPasswordServiceForTest returns a PasswordService with a custom iteration
// count. Tests only. The produced hashes still verify normally because the
// count is embedded in the hash string.
func NewPasswordServiceForTest(iterations int) *PasswordService {
	return &PasswordService{iterations: iterations}
}

// Hash derives a versioned hash for the given password.
//
// A fresh 16-byte salt is drawn from crypto/rand on every call, so hashing
// the same password twice yields different strings.
func (p *PasswordService) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, p.iterations, keyLen, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		schemeTag,
		p.iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the stored hash.
//
// A stored hash carrying the "pbkdf2$" tag is verified by re-deriving the key
// with the embedded salt and iteration count. Anything else is treated as a
// legacy unsalted SHA-256 hex digest. Malformed tagged hashes (wrong field
// count, bad iteration count, undecodable base64) verify as false rather than
// returning an error.
//
// Both paths compare with subtle.ConstantTimeCompare, so response timing does
// not leak how many leading bytes matched.
func (p *PasswordService) Verify(password, stored string) bool {
	if strings.HasPrefix(stored, schemeTag+"$") {
		return verifyVersioned(password, stored)
	}
	return verifyLegacy(password, stored)
}

func verifyVersioned(password, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != schemeTag {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}

	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// verifyLegacy checks password against a pre-migration hash: a single
// unsalted SHA-256 round stored as a lowercase hex digest.
func verifyLegacy(password, stored string) bool {
	sum := sha256.Sum256([]byte(password))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
}

// LegacyHash returns the legacy unsalted hex digest for a password.
// Kept for tests and migration tooling; new code must use Hash.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

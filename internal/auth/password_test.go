package auth

import (
	"strings"
	"testing"
)

// =========================================================================
// HELPER
// =========================================================================

// newTestPasswordService returns a PasswordService with a low iteration
// count so tests run in microseconds instead of ~50ms per hash.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(100)
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_FormatIsVersioned(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("my-secret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 4 {
		t.Fatalf("Hash() = %q, want 4 $-separated fields, got %d", hash, len(parts))
	}
	if parts[0] != "pbkdf2" {
		t.Errorf("scheme tag = %q, want %q", parts[0], "pbkdf2")
	}
	if parts[1] != "100" {
		t.Errorf("iteration field = %q, want %q", parts[1], "100")
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	// A random salt is drawn per call, so two hashes of the same password
	// must differ.
	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService()

	for _, password := range []string{"pw1", "", "correct horse battery staple", "パスワード🔑"} {
		hash, err := ps.Hash(password)
		if err != nil {
			t.Fatalf("Hash(%q) error = %v", password, err)
		}
		if !ps.Verify(password, hash) {
			t.Errorf("Verify(%q, Hash(%q)) = false, want true", password, password)
		}
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, _ := ps.Hash("right-password")
	if ps.Verify("wrong-password", hash) {
		t.Error("Verify() accepted the wrong password")
	}
}

func TestVerify_IterationCountFromHashNotService(t *testing.T) {
	// A hash created with one iteration count must verify through a service
	// configured with another, because the count is embedded in the hash.
	hash, _ := NewPasswordServiceForTest(250).Hash("pw")

	if !newTestPasswordService().Verify("pw", hash) {
		t.Error("Verify() ignored the iteration count embedded in the hash")
	}
}

func TestVerify_LegacyHexDigest(t *testing.T) {
	ps := newTestPasswordService()

	// Accounts created before the scheme migration store a plain lowercase
	// hex SHA-256 digest.
	stored := LegacyHash("old-password")

	if !ps.Verify("old-password", stored) {
		t.Error("Verify() rejected a valid legacy hash")
	}
	if ps.Verify("not-the-password", stored) {
		t.Error("Verify() accepted the wrong password against a legacy hash")
	}
}

func TestVerify_MalformedTaggedHash(t *testing.T) {
	ps := newTestPasswordService()

	// Malformed tagged hashes verify as false, never panic or error.
	cases := []string{
		"pbkdf2$",
		"pbkdf2$100",
		"pbkdf2$100$c2FsdA==",
		"pbkdf2$notanumber$c2FsdA==$aGFzaA==",
		"pbkdf2$-5$c2FsdA==$aGFzaA==",
		"pbkdf2$100$!!notbase64!!$aGFzaA==",
		"pbkdf2$100$c2FsdA==$!!notbase64!!",
		"pbkdf2$100$c2FsdA==$aGFzaA==$extra",
	}
	for _, stored := range cases {
		if ps.Verify("anything", stored) {
			t.Errorf("Verify(%q) = true, want false", stored)
		}
	}
}

func TestVerify_EmptyStoredHash(t *testing.T) {
	ps := newTestPasswordService()

	// An empty stored hash falls into the legacy path and cannot match any
	// password (legacy digests are always 64 hex characters).
	if ps.Verify("anything", "") {
		t.Error("Verify() accepted an empty stored hash")
	}
}

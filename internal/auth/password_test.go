package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// Tests use bcrypt.MinCost — the point is correctness, not work factor,
// and cost 12 would add ~250ms to every hash in the suite.
func newTestPasswordService() *PasswordService {
	return NewPasswordService(bcrypt.MinCost)
}

func TestHashAndVerify(t *testing.T) {
	p := newTestPasswordService()

	hash, err := p.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := p.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password error = %v", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	p := newTestPasswordService()

	hash, _ := p.Hash("correct horse battery staple")

	if err := p.Verify(hash, "incorrect horse"); err == nil {
		t.Error("Verify() with wrong password should return an error")
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	p := newTestPasswordService()

	// The embedded random salt makes every hash unique.
	hash1, _ := p.Hash("same password")
	hash2, _ := p.Hash("same password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes; salt is not being applied")
	}
}

func TestHash_TooLong(t *testing.T) {
	p := newTestPasswordService()

	// bcrypt truncates at 72 bytes; we reject instead.
	if _, err := p.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
}

func TestNewPasswordService_InvalidCostFallsBack(t *testing.T) {
	p := NewPasswordService(999)

	// Should still produce verifiable hashes at DefaultCost.
	hash, err := p.Hash("pw-with-invalid-cost")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if err := p.Verify(hash, "pw-with-invalid-cost"); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

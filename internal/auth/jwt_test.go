package auth

import (
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, "admin@luxsign.co")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	email, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if email != "admin@luxsign.co" {
		t.Fatalf("expected subject admin@luxsign.co, got %q", email)
	}
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret-a"), "admin@luxsign.co")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	if _, err := ValidateToken([]byte("secret-b"), token); err == nil {
		t.Fatalf("expected validation failure with wrong secret")
	}
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	if _, err := ValidateToken([]byte("secret"), "not.a.token"); err == nil {
		t.Fatalf("expected failure for malformed token")
	}
}

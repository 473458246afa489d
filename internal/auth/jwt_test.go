package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelog/carelog-backend/internal/domain"
)

func TestJWTManager_GenerateAndValidate_Success(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	issuer := "carelog-test"
	ttl := 15 * time.Minute

	manager := NewJWTManager(secret, issuer, ttl)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, domain.RoleClinician)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	validatedID, role, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if validatedID != userID {
		t.Errorf("expected userID %s, got %s", userID, validatedID)
	}
	if role != domain.RoleClinician {
		t.Errorf("expected role %q, got %q", domain.RoleClinician, role)
	}
}

func TestJWTManager_GenerateAndValidate_AdminRole(t *testing.T) {
	manager := NewJWTManager("test-secret-at-least-32-chars-long-for-security", "carelog-test", 15*time.Minute)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, role, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Errorf("expected role %q, got %q", domain.RoleAdmin, role)
	}
}

func TestJWTManager_ValidateAccessToken_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret-at-least-32-chars-long-for-security", "carelog-test", -1*time.Hour)
	userID := uuid.New()

	token, err := manager.GenerateAccessToken(userID, domain.RoleClinician)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, _, err = manager.ValidateAccessToken(token)
	if err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
	if !strings.Contains(err.Error(), "expired") && !strings.Contains(err.Error(), "parse token") {
		t.Errorf("expected expiry-related error, got: %v", err)
	}
}

func TestJWTManager_ValidateAccessToken_InvalidSignature(t *testing.T) {
	manager1 := NewJWTManager("test-secret-at-least-32-chars-long-for-security", "carelog-test", 15*time.Minute)
	manager2 := NewJWTManager("different-secret-32-chars-long-for-security!!", "carelog-test", 15*time.Minute)
	userID := uuid.New()

	token, err := manager1.GenerateAccessToken(userID, domain.RoleClinician)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, _, err = manager2.ValidateAccessToken(token)
	if err == nil {
		t.Fatal("expected error for invalid signature, got nil")
	}
}

func TestJWTManager_ValidateAccessToken_Malformed(t *testing.T) {
	manager := NewJWTManager("test-secret-at-least-32-chars-long-for-security", "carelog-test", 15*time.Minute)

	malformedTokens := []string{
		"not.a.jwt",
		"invalid-token",
		"header.payload",
	}

	for _, token := range malformedTokens {
		_, _, err := manager.ValidateAccessToken(token)
		if err == nil {
			t.Errorf("expected error for malformed token %q, got nil", token)
		}
	}
}

func TestJWTManager_ValidateAccessToken_WrongIssuer(t *testing.T) {
	secret := "test-secret-at-least-32-chars-long-for-security"
	manager1 := NewJWTManager(secret, "carelog-test", 15*time.Minute)
	manager2 := NewJWTManager(secret, "wrong-issuer", 15*time.Minute)
	userID := uuid.New()

	token, err := manager1.GenerateAccessToken(userID, domain.RoleClinician)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	_, _, err = manager2.ValidateAccessToken(token)
	if err == nil {
		t.Fatal("expected error for wrong issuer, got nil")
	}
	if !strings.Contains(err.Error(), "invalid issuer") {
		t.Errorf("expected 'invalid issuer' error, got: %v", err)
	}
}

func TestJWTManager_ValidateAccessToken_EmptyString(t *testing.T) {
	manager := NewJWTManager("test-secret-at-least-32-chars-long-for-security", "carelog-test", 15*time.Minute)

	_, _, err := manager.ValidateAccessToken("")
	if err == nil {
		t.Fatal("expected error for empty token, got nil")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected 'empty' error, got: %v", err)
	}
}

func TestHasher_HashAndVerify(t *testing.T) {
	hasher := NewHasher(4) // minimum cost keeps the test fast

	hash, err := hasher.Hash("s3cret-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash must not equal the plaintext")
	}

	ok, err := hasher.Verify(hash, "s3cret-password")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Error("expected matching password to verify")
	}

	ok, err = hasher.Verify(hash, "wrong-password")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Error("expected wrong password to fail verification")
	}
}

func TestHasher_Verify_GarbageHash(t *testing.T) {
	hasher := NewHasher(4)

	_, err := hasher.Verify("not-a-bcrypt-hash", "anything")
	if err == nil {
		t.Fatal("expected error for malformed hash, got nil")
	}
}

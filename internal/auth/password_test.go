package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "validpassword123",
			cost:     bcrypt.MinCost,
			wantErr:  nil,
		},
		{
			name:     "password too long",
			password: strings.Repeat("a", 73),
			cost:     bcrypt.MinCost,
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "password at maximum length",
			password: strings.Repeat("a", 72),
			cost:     bcrypt.MinCost,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, tt.cost)
			if err != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr != nil {
				return
			}
			if hash == "" {
				t.Error("HashPassword() returned empty hash for valid password")
			}
			if hash == tt.password {
				t.Error("HashPassword() returned the plaintext password")
			}
		})
	}
}

func TestHashPassword_UnconfiguredCostFallsBack(t *testing.T) {
	hash, err := HashPassword("somepassword", 0)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}
	if cost != DefaultBcryptCost {
		t.Errorf("cost = %d, want %d", cost, DefaultBcryptCost)
	}
}

func TestHashPassword_FreshSaltPerDigest(t *testing.T) {
	hash1, err := HashPassword("samepassword", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	hash2, err := HashPassword("samepassword", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// Same input must yield different digests because the salt is random
	if hash1 == hash2 {
		t.Error("two digests of the same password are identical")
	}

	if err := CheckPassword("samepassword", hash1); err != nil {
		t.Errorf("CheckPassword(hash1) error = %v", err)
	}
	if err := CheckPassword("samepassword", hash2); err != nil {
		t.Errorf("CheckPassword(hash2) error = %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "correct password",
			password: password,
			wantErr:  nil,
		},
		{
			name:     "incorrect password",
			password: "wrongpassword",
			wantErr:  ErrPasswordMismatch,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password, hash)
			if err != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	err := CheckPassword("whatever", "not-a-bcrypt-digest")
	if err == nil {
		t.Fatal("CheckPassword() accepted a malformed digest")
	}
	if err == ErrPasswordMismatch {
		t.Error("malformed digest reported as plain mismatch")
	}
}

func TestGenerateSessionSecret(t *testing.T) {
	secret, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("GenerateSessionSecret() error = %v", err)
	}

	// Secret should be 64 hex characters (32 bytes)
	if len(secret) != 64 {
		t.Errorf("Secret length = %d, want 64", len(secret))
	}

	secret2, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("Second GenerateSessionSecret() error = %v", err)
	}
	if secret == secret2 {
		t.Error("Generated secrets should be unique")
	}
}

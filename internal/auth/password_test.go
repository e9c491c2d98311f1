package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "password12345",
			wantErr:  nil,
		},
		{
			name:     "too short",
			password: "short",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "exactly minimum length",
			password: "12345678",
			wantErr:  nil,
		},
		{
			name:     "over bcrypt limit",
			password: strings.Repeat("x", 73),
			wantErr:  ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, 10)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HashPassword() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if hash == tt.password {
				t.Error("hash must not equal the plain password")
			}
			if err := CheckPassword(tt.password, hash); err != nil {
				t.Errorf("CheckPassword() on fresh hash: %v", err)
			}
		})
	}
}

func TestCheckPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password", 10)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	err = CheckPassword("wrong-password", hash)
	if !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("CheckPassword() error = %v, want ErrInvalidPassword", err)
	}
}

func TestGenerateSessionSecret(t *testing.T) {
	a, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("GenerateSessionSecret() error = %v", err)
	}
	if len(a) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(a))
	}

	b, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("GenerateSessionSecret() error = %v", err)
	}
	if a == b {
		t.Error("two generated secrets must differ")
	}
}

package ui

import "testing"

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "card_slinger42", false},
		{"minimum length", "abc", false},
		{"too short", "ab", true},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"space", "bad name", true},
		{"hyphen", "bad-name", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateUsername(%q) = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "player@example.com", false},
		{"subdomain", "p@mail.example.co.uk", false},
		{"no at", "example.com", true},
		{"no domain dot", "player@example", true},
		{"spaces", "player @example.com", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateEmail(%q) = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Valid123", ""},
		{"long mixed", "correct horse 1", ""},
		{"too short", "short1", "password must be at least 8 characters"},
		{"no digit", "longenough", "password must contain at least one letter and one digit"},
		{"no letter", "12345678", "password must contain at least one letter and one digit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.password)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validatePassword(%q) = %v, want nil", tt.password, err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("validatePassword(%q) = %v, want %q", tt.password, err, tt.wantErr)
			}
		})
	}
}

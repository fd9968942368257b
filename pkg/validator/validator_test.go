package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		username    string
		displayName string
		password    string
		wantFields  []string
	}{
		{
			name:  "valid input",
			email: "alice@example.com", username: "alice", displayName: "Alice", password: "Sup3rSecret",
		},
		{
			name:  "missing everything",
			email: "", username: "", displayName: "", password: "",
			wantFields: []string{"email", "username", "display_name", "password"},
		},
		{
			name:  "bad email",
			email: "not-an-email", username: "alice", displayName: "Alice", password: "Sup3rSecret",
			wantFields: []string{"email"},
		},
		{
			name:  "username too short",
			email: "alice@example.com", username: "al", displayName: "Alice", password: "Sup3rSecret",
			wantFields: []string{"username"},
		},
		{
			name:  "username with invalid characters",
			email: "alice@example.com", username: "alice!", displayName: "Alice", password: "Sup3rSecret",
			wantFields: []string{"username"},
		},
		{
			name:  "password too short",
			email: "alice@example.com", username: "alice", displayName: "Alice", password: "Ab1",
			wantFields: []string{"password"},
		},
		{
			name:  "password without digit",
			email: "alice@example.com", username: "alice", displayName: "Alice", password: "SuperSecret",
			wantFields: []string{"password"},
		},
		{
			name:  "password without uppercase",
			email: "alice@example.com", username: "alice", displayName: "Alice", password: "sup3rsecret",
			wantFields: []string{"password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRegister(tt.email, tt.username, tt.displayName, tt.password)

			if len(tt.wantFields) == 0 {
				assert.False(t, errs.HasErrors(), "expected no errors, got %v", errs)
				return
			}
			assert.True(t, errs.HasErrors())
			assert.Len(t, errs, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, errs, field)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	assert.False(t, ValidateLogin("alice@example.com", "whatever").HasErrors())
	assert.Contains(t, ValidateLogin("", "whatever"), "email")
	assert.Contains(t, ValidateLogin("alice@example.com", ""), "password")
}

func TestValidateProfile(t *testing.T) {
	assert.False(t, ValidateProfile("Alice", "hi", "Zagreb").HasErrors())
	assert.Contains(t, ValidateProfile("", "hi", "Zagreb"), "display_name")
	assert.Contains(t, ValidateProfile("Alice", strings.Repeat("x", maxBioLength+1), "Zagreb"), "bio")
	assert.Contains(t, ValidateProfile("Alice", "hi", strings.Repeat("x", 101)), "location")
}

func TestValidatePost(t *testing.T) {
	assert.False(t, ValidatePost("hello").HasErrors())
	assert.Contains(t, ValidatePost("   "), "content")
	assert.Contains(t, ValidatePost(strings.Repeat("x", maxPostLength+1)), "content")
	// Rune count, not byte count.
	assert.False(t, ValidatePost(strings.Repeat("é", maxPostLength)).HasErrors())
}

func TestValidateComment(t *testing.T) {
	assert.False(t, ValidateComment("nice").HasErrors())
	assert.Contains(t, ValidateComment(""), "content")
	assert.Contains(t, ValidateComment(strings.Repeat("x", maxCommentLength+1)), "content")
}

package toolutil

import (
	"errors"
	"testing"

	"github.com/yeyou612/douyin-mcp-server/internal/engine"
)

func TestCheckAuth(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		provided   string
		wantErr    bool
	}{
		{"no token configured, none provided", "", "", false},
		{"no token configured, any provided", "", "whatever", false},
		{"token configured, match", "secret", "secret", false},
		{"token configured, mismatch", "secret", "wrong", true},
		{"token configured, empty provided", "secret", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine.Init(engine.Config{AuthToken: tt.configured})

			err := CheckAuth(tt.provided)
			if tt.wantErr {
				if !errors.Is(err, ErrAuthRejected) {
					t.Errorf("expected ErrAuthRejected, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCredentialFor(t *testing.T) {
	engine.Init(engine.Config{
		DashScopeAPIKey: "ds-key",
		GroqAPIKey:      "gq-key",
	})

	if got := CredentialFor("groq"); got != "gq-key" {
		t.Errorf("CredentialFor(groq) = %q", got)
	}
	if got := CredentialFor("dashscope"); got != "ds-key" {
		t.Errorf("CredentialFor(dashscope) = %q", got)
	}
	// Unknown and empty names fall through to the default provider's key.
	if got := CredentialFor(""); got != "ds-key" {
		t.Errorf("CredentialFor(\"\") = %q", got)
	}
}

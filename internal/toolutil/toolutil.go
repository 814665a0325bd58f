// Package toolutil provides shared helper functions for douyin-mcp-server tools.
package toolutil

import (
	"errors"
	"fmt"

	"github.com/yeyou612/douyin-mcp-server/internal/engine"
)

// ErrAuthRejected means the caller's auth token did not match the configured one.
var ErrAuthRejected = errors.New("auth rejected")

// CheckAuth gates a tool call on the configured access token. When no token is
// configured the check is disabled entirely; when one is, every call must
// carry a matching auth_token and fails here before any pipeline work.
func CheckAuth(token string) error {
	expected := engine.Cfg.AuthToken
	if expected == "" {
		return nil
	}
	if token != expected {
		return fmt.Errorf("%w: provided token is invalid", ErrAuthRejected)
	}
	return nil
}

// CredentialFor returns the configured API key for an stt provider name.
// Empty string means the credential is unset; the caller decides how to fail.
func CredentialFor(provider string) string {
	switch provider {
	case "groq":
		return engine.Cfg.GroqAPIKey
	default:
		return engine.Cfg.DashScopeAPIKey
	}
}

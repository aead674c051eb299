package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRedirectSafe(t *testing.T) {
	const issuer = "https://sso.example.com"

	cases := []struct {
		name     string
		redirect string
		want     bool
	}{
		{"empty", "", true},
		{"relative path", "/dashboard", true},
		{"relative with query", "/oauth/authorize?client_id=x", true},
		{"protocol-relative", "//evil.example.com", false},
		{"backslash trick", "/\\evil.example.com", false},
		{"same origin absolute", "https://sso.example.com/profile", true},
		{"other host", "https://evil.example.com/", false},
		{"javascript scheme", "javascript:alert(1)", false},
		{"header injection", "/path\r\nSet-Cookie: x=y", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRedirectSafe(tc.redirect, issuer))
		})
	}
}

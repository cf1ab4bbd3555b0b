package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "warranty/internal/jwt_token"
)

func TestRun_MintsVerifiableToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "cli-key")
	var out bytes.Buffer

	require.NoError(t, run([]string{"-s", "acme-retail", "--ttl", "1h"}, &out))

	claims, err := jwttoken.NewJWTService("cli-key", "warranty", "warranty-api").
		ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "acme-retail", claims.Subject)
	assert.Equal(t, jwttoken.RoleIssuer, claims.Role)
}

func TestRun_RejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing subject", args: []string{"--signing-key", "k"}, wantErr: "--subject is required"},
		{name: "missing key", args: []string{"--subject", "acme"}, wantErr: "no signing key"},
		{name: "non-positive ttl", args: []string{"--subject", "acme", "--signing-key", "k", "--ttl", "0s"}, wantErr: "--ttl must be positive"},
		{name: "unknown flag", args: []string{"--nope"}, wantErr: "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, out.String())
		})
	}
}

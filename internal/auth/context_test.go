package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimsFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, Claims(ctx))
	assert.False(t, IsAuthenticated(ctx))
	assert.Empty(t, UserID(ctx))
	assert.Empty(t, Email(ctx))

	claims := NewTestClaims("user_123", "tech@shop.example")
	ctx = WithClaims(ctx, claims)

	assert.True(t, IsAuthenticated(ctx))
	assert.Equal(t, "user_123", UserID(ctx))
	assert.Equal(t, "tech@shop.example", Email(ctx))
}

func TestHasPermission(t *testing.T) {
	claims := NewTestClaims("user_123", "tech@shop.example")
	claims.Permissions = []string{"diagnose:run", "outcomes:write"}
	ctx := WithClaims(context.Background(), claims)

	assert.True(t, HasPermission(ctx, "diagnose:run"))
	assert.False(t, HasPermission(ctx, "admin:billing"))
	assert.False(t, HasPermission(context.Background(), "diagnose:run"))
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", ""},
		{"bearer token", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, extractBearerToken(r))
		})
	}
}

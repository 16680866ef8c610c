package unit

import (
	"testing"

	"github.com/anhbaysgalan1/arena/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", "test-issuer")

	userID := uuid.New()
	username := "testuser"
	role := auth.RolePlayer

	token, err := jwtManager.GenerateToken(userID, username, role)

	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Parse the token to verify its contents
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})

	require.NoError(t, err)
	assert.True(t, parsedToken.Valid)

	claims := parsedToken.Claims.(jwt.MapClaims)
	assert.Equal(t, userID.String(), claims["user_id"])
	assert.Equal(t, username, claims["username"])
	assert.Equal(t, role, claims["role"])
	assert.Equal(t, "test-issuer", claims["iss"])
}

func TestJWTManager_ValidateToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", "test-issuer")

	userID := uuid.New()
	username := "testuser"

	tests := []struct {
		name        string
		setupToken  func() string
		expectError bool
	}{
		{
			name: "Valid token",
			setupToken: func() string {
				token, _ := jwtManager.GenerateToken(userID, username, auth.RoleOperator)
				return token
			},
			expectError: false,
		},
		{
			name: "Token signed with wrong secret",
			setupToken: func() string {
				other := auth.NewJWTManager("wrong-secret", "test-issuer")
				token, _ := other.GenerateToken(userID, username, auth.RolePlayer)
				return token
			},
			expectError: true,
		},
		{
			name: "Malformed token",
			setupToken: func() string {
				return "not.a.token"
			},
			expectError: true,
		},
		{
			name: "Empty token",
			setupToken: func() string {
				return ""
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := jwtManager.ValidateToken(tt.setupToken())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				require.NotNil(t, claims)
				assert.Equal(t, userID, claims.UserID)
				assert.Equal(t, username, claims.Username)
				assert.Equal(t, auth.RoleOperator, claims.Role)
			}
		})
	}
}

func TestJWTManager_ExtractTokenFromBearer(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", "test-issuer")

	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "Valid bearer header",
			header:   "Bearer abc123",
			expected: "abc123",
		},
		{
			name:     "Missing Bearer prefix",
			header:   "abc123",
			expected: "",
		},
		{
			name:     "Empty header",
			header:   "",
			expected: "",
		},
		{
			name:     "Lowercase bearer",
			header:   "bearer abc123",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, jwtManager.ExtractTokenFromBearer(tt.header))
		})
	}
}

package unit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anhbaysgalan1/arena/internal/auth"
	"github.com/stretchr/testify/assert"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/operator/test", nil)
	ctx := context.WithValue(req.Context(), auth.RoleKey, role)
	return req.WithContext(ctx)
}

func TestRoleMiddleware_RequireOperator(t *testing.T) {
	rm := auth.NewRoleMiddleware()

	handler := rm.RequireOperator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name           string
		role           string
		expectedStatus int
	}{
		{
			name:           "Operator is allowed",
			role:           auth.RoleOperator,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Admin is allowed",
			role:           auth.RoleAdmin,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Player is forbidden",
			role:           auth.RolePlayer,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithRole(tt.role))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRoleMiddleware_MissingRole(t *testing.T) {
	rm := auth.NewRoleMiddleware()

	handler := rm.RequireRole(auth.RoleOperator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/operator/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

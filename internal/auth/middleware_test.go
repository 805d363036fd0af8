package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/pkg/jwt"
)

func TestMiddleware(t *testing.T) {
	signer := jwt.NewJWT("test-secret", 3600)
	token, err := signer.GenerateToken("alice")
	require.NoError(t, err)

	var seen string
	handler := NewAuthMiddleware(signer).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantUser string
	}{
		{name: "bearer header", header: "Bearer " + token, wantCode: http.StatusNoContent, wantUser: "alice"},
		{name: "query token", query: "?token=" + token, wantCode: http.StatusNoContent, wantUser: "alice"},
		{name: "missing", wantCode: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/inbox"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}

func TestUserID_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserID(req.Context())
	assert.False(t, ok)
}

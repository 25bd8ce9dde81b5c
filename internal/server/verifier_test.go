package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookVerifier_PostsVerification(t *testing.T) {
	var got Verification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	v := Verification{Email: "a@example.com", Name: "A", Code: "code", ExpiresAt: testNow.Add(time.Hour)}
	require.NoError(t, NewWebhookVerifier(srv.URL).SendVerification(context.Background(), v))

	assert.Equal(t, v.Email, got.Email)
	assert.Equal(t, v.Code, got.Code)
	assert.True(t, v.ExpiresAt.Equal(got.ExpiresAt))
}

func TestWebhookVerifier_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookVerifier(srv.URL).SendVerification(context.Background(), Verification{Email: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestLogVerifier(t *testing.T) {
	assert.NoError(t, LogVerifier{}.SendVerification(context.Background(), Verification{Email: "a@example.com", Code: "c"}))
}

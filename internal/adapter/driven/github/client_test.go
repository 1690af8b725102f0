package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/ericfisherdev/forgekit/internal/adapter/driven/github"
	"github.com/ericfisherdev/forgekit/internal/domain/model"
	"github.com/ericfisherdev/forgekit/internal/domain/port/driven"
)

const publicKeyPath = "/repos/owner/repo/actions/secrets/public-key"

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/", "test-token")
	require.NoError(t, err)

	return client
}

func testKeyBytes() []byte {
	b := make([]byte, 32)
	for i := range b {
		b[i] = byte(i + 1)
	}
	return b
}

func writeKey(w http.ResponseWriter, keyID string, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"key_id": keyID,
		"key":    base64.StdEncoding.EncodeToString(raw),
	})
}

func TestFetchPublicKey_Success(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+publicKeyPath, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeKey(w, "42", testKeyBytes())
	})
	client := newTestClient(t, mux)

	key, err := client.FetchPublicKey(context.Background(), "owner/repo")

	require.NoError(t, err)
	assert.Equal(t, "42", key.KeyID)
	assert.Equal(t, testKeyBytes(), key.Key[:])
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestFetchPublicKey_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+publicKeyPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	client := newTestClient(t, mux)

	_, err := client.FetchPublicKey(context.Background(), "owner/repo")

	require.Error(t, err)
	var apiErr *driven.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.False(t, errors.Is(err, driven.ErrUnauthorized))
}

func TestFetchPublicKey_Unauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+publicKeyPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})
	client := newTestClient(t, mux)

	_, err := client.FetchPublicKey(context.Background(), "owner/repo")

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrUnauthorized)
}

func TestFetchPublicKey_InvalidKey(t *testing.T) {
	tests := []struct {
		name  string
		keyID string
		body  string
	}{
		{name: "short key", keyID: "1", body: base64.StdEncoding.EncodeToString([]byte("too-short"))},
		{name: "not base64", keyID: "1", body: "%%%not-base64%%%"},
		{name: "missing key id", keyID: "", body: base64.StdEncoding.EncodeToString(testKeyBytes())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET "+publicKeyPath, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]string{"key_id": tt.keyID, "key": tt.body})
			})
			client := newTestClient(t, mux)

			_, err := client.FetchPublicKey(context.Background(), "owner/repo")

			assert.ErrorIs(t, err, driven.ErrInvalidPublicKey)
		})
	}
}

func TestFetchPublicKey_InvalidRepoName(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.FetchPublicKey(context.Background(), "no-slash")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected owner/repo")
}

func TestPutSecret_Success(t *testing.T) {
	var calls int
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/owner/repo/actions/secrets/DEVNET_KEYPAIR", func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	})
	client := newTestClient(t, mux)

	err := client.PutSecret(context.Background(), "owner/repo", model.SealedSecret{
		Name:           "DEVNET_KEYPAIR",
		KeyID:          "42",
		EncryptedValue: "c2VhbGVk",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]any{"key_id": "42", "encrypted_value": "c2VhbGVk"}, body)
}

func TestPutSecret_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/owner/repo/actions/secrets/X", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Validation Failed"}`))
	})
	client := newTestClient(t, mux)

	err := client.PutSecret(context.Background(), "owner/repo", model.SealedSecret{Name: "X", KeyID: "1", EncryptedValue: "e30="})

	require.Error(t, err)
	var apiErr *driven.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Op, "putting secret X")
}

func TestNewClientWithHTTPClient_AddsTrailingSlash(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3"+publicKeyPath, func(w http.ResponseWriter, _ *http.Request) {
		writeKey(w, "7", testKeyBytes())
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/api/v3", "tok")
	require.NoError(t, err)

	key, err := client.FetchPublicKey(context.Background(), "owner/repo")
	require.NoError(t, err)
	assert.Equal(t, "7", key.KeyID)
}

package driven

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ericfisherdev/forgekit/internal/domain/model"
)

// ErrUnauthorized matches any APIError whose status is 401 or 403.
var ErrUnauthorized = errors.New("unauthorized: check GH_TOKEN scopes")

// ErrInvalidPublicKey is returned when the public key served by the API cannot be
// decoded into a 32-byte Curve25519 key.
var ErrInvalidPublicKey = errors.New("invalid repository public key")

// APIError reports a non-2xx response from the secrets API.
type APIError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s: %v", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is reports auth failures as ErrUnauthorized so callers need not inspect codes.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// SecretStore defines the driven port for a repository's encrypted CI secret store.
type SecretStore interface {
	// FetchPublicKey returns the key new secret values must be sealed with.
	FetchPublicKey(ctx context.Context, repoFullName string) (model.PublicKey, error)

	// PutSecret creates or overwrites the named secret. Re-running with the same
	// name replaces the stored value.
	PutSecret(ctx context.Context, repoFullName string, secret model.SealedSecret) error
}

package driven

import "context"

// CredentialSource defines the driven port for reading local credential material.
// Implementations return the raw bytes; callers treat them as opaque.
type CredentialSource interface {
	ReadCredential(ctx context.Context, path string) ([]byte, error)
}

// Package filesystem implements the CredentialSource port on top of local files.
package filesystem

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"

	"github.com/ericfisherdev/forgekit/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialSource = (*CredentialFile)(nil)

// CredentialFile reads credential material from a path on the local disk.
// A leading "~" in the path is expanded to the current user's home directory.
type CredentialFile struct{}

// NewCredentialFile creates a new CredentialFile.
func NewCredentialFile() *CredentialFile {
	return &CredentialFile{}
}

// ReadCredential returns the file contents unchanged. Errors wrap the underlying
// *fs.PathError, so errors.Is(err, fs.ErrNotExist) holds for missing files.
func (f *CredentialFile) ReadCredential(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand credential path %q: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	return data, nil
}

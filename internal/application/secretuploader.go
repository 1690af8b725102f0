package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ericfisherdev/forgekit/internal/domain/model"
	"github.com/ericfisherdev/forgekit/internal/domain/port/driven"
)

// ErrInvalidSecretName is returned before any network call when the secret name
// would be rejected by GitHub.
var ErrInvalidSecretName = errors.New("invalid secret name")

// secretNamePattern mirrors GitHub's naming rules: alphanumerics and underscores,
// not starting with a digit.
var secretNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// UploadRequest names the repository, the secret and the local file to seal.
type UploadRequest struct {
	Repo           string
	SecretName     string
	CredentialPath string
	// DryRun stops after sealing; the secret store is never written.
	DryRun bool
}

// UploadResult describes a completed run.
type UploadResult struct {
	Repo     string
	Secret   model.SealedSecret
	Uploaded bool
}

// SecretUploader fetches a repository public key, seals a local credential to it
// and stores the ciphertext as a CI secret. It depends only on port interfaces.
type SecretUploader struct {
	store  driven.SecretStore
	source driven.CredentialSource
	logger *slog.Logger
}

// NewSecretUploader creates a new SecretUploader with the required dependencies.
func NewSecretUploader(store driven.SecretStore, source driven.CredentialSource, logger *slog.Logger) *SecretUploader {
	return &SecretUploader{
		store:  store,
		source: source,
		logger: logger,
	}
}

// Upload runs the fetch-key, read, seal, put sequence and stops at the first
// failure. A failed key fetch means the credential is never read or sealed and
// nothing is uploaded. There are no retries.
func (u *SecretUploader) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if err := validateSecretName(req.SecretName); err != nil {
		return nil, err
	}

	key, err := u.store.FetchPublicKey(ctx, req.Repo)
	if err != nil {
		return nil, fmt.Errorf("fetching public key: %w", err)
	}
	u.logger.Info("fetched repository public key", "repo", req.Repo, "key_id", key.KeyID)

	raw, err := u.source.ReadCredential(ctx, req.CredentialPath)
	if err != nil {
		return nil, fmt.Errorf("reading credential: %w", err)
	}
	// An empty credential is still a valid value to seal.
	plaintext := bytes.TrimSpace(raw)

	encrypted, err := SealValue(plaintext, key)
	if err != nil {
		return nil, err
	}

	sealed := model.SealedSecret{
		Name:           req.SecretName,
		KeyID:          key.KeyID,
		EncryptedValue: encrypted,
	}
	result := &UploadResult{Repo: req.Repo, Secret: sealed}

	if req.DryRun {
		u.logger.Info("dry run, skipping upload", "secret", req.SecretName, "ciphertext_len", len(encrypted))
		return result, nil
	}

	if err := u.store.PutSecret(ctx, req.Repo, sealed); err != nil {
		return nil, fmt.Errorf("uploading secret: %w", err)
	}
	result.Uploaded = true
	u.logger.Info("secret uploaded", "repo", req.Repo, "secret", req.SecretName)

	return result, nil
}

func validateSecretName(name string) error {
	if !secretNamePattern.MatchString(name) {
		return fmt.Errorf("%w %q: use letters, digits and underscores, not starting with a digit", ErrInvalidSecretName, name)
	}
	if strings.HasPrefix(strings.ToUpper(name), "GITHUB_") {
		return fmt.Errorf("%w %q: the GITHUB_ prefix is reserved", ErrInvalidSecretName, name)
	}
	return nil
}

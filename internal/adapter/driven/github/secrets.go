package github

import (
	"context"
	"encoding/base64"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/forgekit/internal/domain/model"
	"github.com/ericfisherdev/forgekit/internal/domain/port/driven"
)

// FetchPublicKey retrieves the Actions secrets public key for the repository and
// maps it to a domain model PublicKey.
func (c *Client) FetchPublicKey(ctx context.Context, repoFullName string) (model.PublicKey, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return model.PublicKey{}, err
	}

	key, resp, err := c.gh.Actions.GetRepoPublicKey(ctx, owner, repo)
	if err != nil {
		return model.PublicKey{}, mapError(fmt.Sprintf("fetching public key for %s", repoFullName), resp, err)
	}

	return mapPublicKey(key)
}

// PutSecret creates or updates an Actions secret with an already sealed value.
func (c *Client) PutSecret(ctx context.Context, repoFullName string, secret model.SealedSecret) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	resp, err := c.gh.Actions.CreateOrUpdateRepoSecret(ctx, owner, repo, &gh.EncryptedSecret{
		Name:           secret.Name,
		KeyID:          secret.KeyID,
		EncryptedValue: secret.EncryptedValue,
	})
	if err != nil {
		return mapError(fmt.Sprintf("putting secret %s in %s", secret.Name, repoFullName), resp, err)
	}

	return nil
}

// mapPublicKey converts a go-github PublicKey to a domain model PublicKey.
func mapPublicKey(key *gh.PublicKey) (model.PublicKey, error) {
	if key.GetKeyID() == "" {
		return model.PublicKey{}, fmt.Errorf("%w: missing key_id", driven.ErrInvalidPublicKey)
	}

	raw, err := base64.StdEncoding.DecodeString(key.GetKey())
	if err != nil {
		return model.PublicKey{}, fmt.Errorf("%w: decoding key: %v", driven.ErrInvalidPublicKey, err)
	}

	var pk model.PublicKey
	if len(raw) != len(pk.Key) {
		return model.PublicKey{}, fmt.Errorf("%w: got %d bytes, want %d", driven.ErrInvalidPublicKey, len(raw), len(pk.Key))
	}
	pk.KeyID = key.GetKeyID()
	copy(pk.Key[:], raw)

	return pk, nil
}

// mapError wraps err in a driven.APIError when the server answered with a status
// code. Transport failures (no response) are wrapped as-is.
func mapError(op string, resp *gh.Response, err error) error {
	if resp != nil && resp.Response != nil {
		return &driven.APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

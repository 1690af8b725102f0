// Package cli implements the sealsecret command on top of cobra.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/forgekit/internal/adapter/driven/filesystem"
	githubadapter "github.com/ericfisherdev/forgekit/internal/adapter/driven/github"
	"github.com/ericfisherdev/forgekit/internal/application"
	"github.com/ericfisherdev/forgekit/internal/config"
	"github.com/ericfisherdev/forgekit/internal/domain/port/driven"
)

// StoreFactory builds the secret store for a loaded configuration.
type StoreFactory func(cfg *config.Uploader) (driven.SecretStore, error)

// Options overrides the command's collaborators. Zero values select the
// production implementations.
type Options struct {
	NewStore StoreFactory
	Source   driven.CredentialSource
	Logger   *slog.Logger
}

// NewSealSecretCommand returns the root command of the sealsecret binary.
func NewSealSecretCommand(opts Options) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sealsecret",
		Short: "Encrypt a local credential and store it as a GitHub Actions secret",
		Long: `Fetches the repository's Actions public key, encrypts the credential file
with a sealed box so only GitHub can decrypt it, and uploads the result as a
repository secret. Re-running overwrites the secret.

GH_TOKEN must hold a token allowed to manage the repository's secrets.

Example:
  GH_TOKEN=ghp_xxx sealsecret --repo owner/repo --secret DEVNET_KEYPAIR --file ~/.config/solana/id.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSealSecret(cmd, opts, dryRun)
		},
	}

	flags := cmd.Flags()
	flags.String(config.FlagRepo, config.DefaultRepo, "target repository as owner/repo (env FORGEKIT_REPO)")
	flags.String(config.FlagSecretName, config.DefaultSecretName, "name of the Actions secret (env FORGEKIT_SECRET_NAME)")
	flags.String(config.FlagKeyPath, config.DefaultCredentialPath, "credential file to encrypt (env FORGEKIT_KEY_PATH)")
	flags.String(config.FlagAPIURL, config.DefaultAPIURL, "GitHub REST API base URL (env FORGEKIT_API_URL)")
	flags.BoolVar(&dryRun, "dry-run", false, "fetch the key and encrypt, but do not upload")

	return cmd
}

func runSealSecret(cmd *cobra.Command, opts Options, dryRun bool) error {
	cfg, err := config.LoadUploader(cmd.Flags())
	if err != nil {
		return err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	}

	newStore := opts.NewStore
	if newStore == nil {
		newStore = defaultStore
	}
	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	source := opts.Source
	if source == nil {
		source = filesystem.NewCredentialFile()
	}

	uploader := application.NewSecretUploader(store, source, logger)
	result, err := uploader.Upload(cmd.Context(), application.UploadRequest{
		Repo:           cfg.Repo,
		SecretName:     cfg.SecretName,
		CredentialPath: cfg.CredentialPath,
		DryRun:         dryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Uploaded {
		fmt.Fprintf(out, "%s Dry run: sealed %s for %s with key %s (%d bytes base64), not uploaded\n",
			color.YellowString("!"), color.YellowString(result.Secret.Name), result.Repo,
			result.Secret.KeyID, len(result.Secret.EncryptedValue))
		return nil
	}
	fmt.Fprintf(out, "%s Secret '%s' updated successfully in %s\n",
		color.GreenString("✓"), result.Secret.Name, result.Repo)
	return nil
}

func defaultStore(cfg *config.Uploader) (driven.SecretStore, error) {
	return githubadapter.NewClient(cfg.Token, cfg.APIURL)
}

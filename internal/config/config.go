// Package config loads application configuration from environment variables and,
// for the CLI, command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when GH_TOKEN is unset or empty. The uploader
// aborts on it before making any network call.
var ErrMissingToken = errors.New("GH_TOKEN is not set")

// Defaults for the uploader. They name the repository, secret and keypair the
// tool manages out of the box.
const (
	DefaultRepo           = "Gitdigital-products/solana-kyc-compliance-sdk"
	DefaultSecretName     = "DEVNET_KEYPAIR"
	DefaultCredentialPath = "~/.config/solana/id.json"
	DefaultAPIURL         = "https://api.github.com/"
	DefaultListenAddr     = ":8000"
)

// EnvListenAddr is the receiver's listen address variable, shared with the
// container healthcheck.
const EnvListenAddr = "FORGEKIT_LISTEN_ADDR"

// LivenessPath is where the receiver answers GET with its liveness document.
const LivenessPath = "/"

// Flag names understood by LoadUploader. A flag that was set on the command line
// overrides the matching environment variable.
const (
	FlagRepo       = "repo"
	FlagSecretName = "secret"
	FlagKeyPath    = "file"
	FlagAPIURL     = "api-url"
)

// Uploader holds the configuration of the secret sealer/uploader command.
type Uploader struct {
	Token          string
	Repo           string
	SecretName     string
	CredentialPath string
	APIURL         string
	LogLevel       slog.Level
}

// Receiver holds the configuration of the webhook receiver service.
type Receiver struct {
	ListenAddr string
	LogLevel   slog.Level
}

// LoadUploader reads the uploader configuration. GH_TOKEN is required; everything
// else has a default:
// FORGEKIT_REPO, FORGEKIT_SECRET_NAME, FORGEKIT_KEY_PATH, FORGEKIT_API_URL,
// FORGEKIT_LOG_LEVEL (info). flags may be nil.
func LoadUploader(flags *pflag.FlagSet) (*Uploader, error) {
	v := viper.New()
	bindings := []struct {
		key, env, flag, def string
	}{
		{key: "token", env: "GH_TOKEN"},
		{key: "repo", env: "FORGEKIT_REPO", flag: FlagRepo, def: DefaultRepo},
		{key: "secret_name", env: "FORGEKIT_SECRET_NAME", flag: FlagSecretName, def: DefaultSecretName},
		{key: "key_path", env: "FORGEKIT_KEY_PATH", flag: FlagKeyPath, def: DefaultCredentialPath},
		{key: "api_url", env: "FORGEKIT_API_URL", flag: FlagAPIURL, def: DefaultAPIURL},
		{key: "log_level", env: "FORGEKIT_LOG_LEVEL", def: "info"},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.env, err)
		}
		if b.def != "" {
			v.SetDefault(b.key, b.def)
		}
		if b.flag == "" || flags == nil {
			continue
		}
		if f := flags.Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", b.flag, err)
			}
		}
	}

	token := strings.TrimSpace(v.GetString("token"))
	if token == "" {
		return nil, ErrMissingToken
	}

	repo := strings.TrimSpace(v.GetString("repo"))
	if err := validateRepo(repo); err != nil {
		return nil, err
	}

	level, err := parseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, err
	}

	return &Uploader{
		Token:          token,
		Repo:           repo,
		SecretName:     strings.TrimSpace(v.GetString("secret_name")),
		CredentialPath: v.GetString("key_path"),
		APIURL:         v.GetString("api_url"),
		LogLevel:       level,
	}, nil
}

// LoadReceiver reads the webhook receiver configuration. Optional variables with
// defaults: FORGEKIT_LISTEN_ADDR (:8000), FORGEKIT_LOG_LEVEL (info).
func LoadReceiver() (*Receiver, error) {
	v := viper.New()
	v.SetEnvPrefix("FORGEKIT")
	v.AutomaticEnv()
	if err := v.BindEnv("listen_addr", EnvListenAddr); err != nil {
		return nil, fmt.Errorf("binding %s: %w", EnvListenAddr, err)
	}
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("log_level", "info")

	level, err := parseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, err
	}

	return &Receiver{
		ListenAddr: v.GetString("listen_addr"),
		LogLevel:   level,
	}, nil
}

func validateRepo(repo string) error {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("FORGEKIT_REPO has invalid value %q: expected owner/repo", repo)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("FORGEKIT_LOG_LEVEL has invalid value %q: %w", s, err)
	}
	return level, nil
}

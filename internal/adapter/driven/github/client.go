// Package github implements the SecretStore port using the go-github library.
package github

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/forgekit/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SecretStore = (*Client)(nil)

// DefaultBaseURL is the public GitHub REST API root.
const DefaultBaseURL = "https://api.github.com/"

// Client implements the driven.SecretStore port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github (GitHub REST API client with PAT auth)
//
// baseURL may be empty, in which case DefaultBaseURL is used.
func NewClient(token, baseURL string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	httpClient := &http.Client{
		Transport: cacheTransport,
		Timeout:   30 * time.Second,
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return NewClientWithHTTPClient(httpClient, baseURL, token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	// go-github requires a trailing slash on BaseURL.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	client := gh.NewClient(httpClient).WithAuthToken(token)
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// splitRepo splits "owner/repo" into its two parts.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

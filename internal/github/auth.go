package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"

	"github.com/sevigo/review-relay/internal/config"
)

// ErrNoCredentials is returned when neither a token nor App credentials are configured.
var ErrNoCredentials = errors.New("no GitHub credentials configured")

// ClientProvider hands out a client that may act on the given repository.
type ClientProvider interface {
	ClientFor(ctx context.Context, owner, repo string) (Client, error)
}

type staticProvider struct {
	client Client
}

// NewStaticProvider serves the same client for every repository.
func NewStaticProvider(client Client) ClientProvider {
	return &staticProvider{client: client}
}

func (p *staticProvider) ClientFor(context.Context, string, string) (Client, error) {
	return p.client, nil
}

type missingProvider struct{}

func (missingProvider) ClientFor(context.Context, string, string) (Client, error) {
	return nil, ErrNoCredentials
}

// NewClientProvider picks the authentication configured in cfg: a personal
// access token, else the GitHub App. Without either every lookup fails with
// ErrNoCredentials, which still allows dry runs.
func NewClientProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ClientProvider, error) {
	switch {
	case cfg.GitHub.Token != "":
		logger.Info("using GitHub personal access token")
		return NewStaticProvider(NewPATClient(ctx, cfg.GitHub.Token, logger)), nil
	case cfg.GitHub.AppID != 0:
		return NewAppProvider(cfg.GitHub.AppID, cfg.GitHub.PrivateKeyPath, logger)
	default:
		logger.Warn("no GitHub credentials configured, reviews can only be relayed as dry runs")
		return missingProvider{}, nil
	}
}

// appProvider authenticates as the GitHub App installation of each repository.
type appProvider struct {
	appID      int64
	privateKey []byte
	apps       *github.Client
	logger     *slog.Logger

	mu      sync.Mutex
	clients map[string]Client
}

// NewAppProvider creates a provider for the GitHub App appID whose private key
// is stored at keyPath.
func NewAppProvider(appID int64, keyPath string, logger *slog.Logger) (ClientProvider, error) {
	privateKey, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", keyPath, err)
	}

	// The apps transport signs JWTs for the App API, e.g. installation lookups.
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}

	return &appProvider{
		appID:      appID,
		privateKey: privateKey,
		apps:       github.NewClient(&http.Client{Transport: appTransport}),
		logger:     logger,
		clients:    make(map[string]Client),
	}, nil
}

// ClientFor finds the App installation on owner/repo and returns a client
// authenticated as it. Installation transports refresh their own tokens, so
// clients are cached per repository.
func (p *appProvider) ClientFor(ctx context.Context, owner, repo string) (Client, error) {
	key := owner + "/" + repo
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[key]; ok {
		return c, nil
	}

	installation, _, err := p.apps.Apps.FindRepositoryInstallation(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to find GitHub App installation for %s: %w", key, err)
	}
	p.logger.Info("creating GitHub installation client", "repo", key, "installation_id", installation.GetID())

	transport, err := ghinstallation.New(http.DefaultTransport, p.appID, installation.GetID(), p.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation transport for %s: %w", key, err)
	}

	c := NewGitHubClient(github.NewClient(&http.Client{Transport: transport}), p.logger)
	p.clients[key] = c
	return c, nil
}

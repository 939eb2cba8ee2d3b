package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artugro/load-flow/internal/retry"
	"github.com/artugro/load-flow/pkg/loadflow"
)

// tokenExpiryWarning is the remaining lifetime below which a fresh token is
// reported as about to expire.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector connects to cloud-hosted PostgreSQL (AWS IAM, Azure
// Entra ID) using a short-lived token from a TokenProvider as the password.
// A new token is fetched on every attempt.
type TokenBasedConnector struct {
	config        *loadflow.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	logger        loadflow.Logger
}

func NewTokenBasedConnector(config *loadflow.ConnectionConfig, tokenProvider TokenProvider, logger loadflow.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newRetryExecutor(logger),
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	c.logger.Verbose("Authenticating with %s", c.tokenProvider)

	return connectWithRetry(ctx, c.retryExecutor, c.config, c.logger, func(ctx context.Context) (string, error) {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: failed to acquire token from %s: %w", loadflow.ErrConnectionFailed, c.tokenProvider, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.tokenProvider, remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token
		return BuildConnectionString(&withToken), nil
	})
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *loadflow.ConnectionConfig, logger loadflow.Logger) (loadflow.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w: %w", loadflow.ErrInvalidConfig, err)
	}
	return NewTokenBasedConnector(config, tokenProvider, logger), nil
}

// newAzureConnector uses Service Principal auth when tenant, client and
// secret are all set, and the DefaultAzureCredential chain otherwise.
func newAzureConnector(config *loadflow.ConnectionConfig, logger loadflow.Logger) (loadflow.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure token provider: %w", err)
	}
	return NewTokenBasedConnector(config, tokenProvider, logger), nil
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// TokenBasedConnector opens sessions for cloud providers that authenticate
// with short-lived tokens (AWS IAM, Azure Entra ID). A new token is acquired
// for every session, so reconnects never reuse an expired one.
type TokenBasedConnector struct {
	config        *simplepg.ConnectionConfig
	tokenProvider TokenProvider
	logger        simplepg.Logger
}

var _ simplepg.Connector = (*TokenBasedConnector)(nil)

// NewTokenBasedConnector creates a connector that uses tokenProvider for the password.
func NewTokenBasedConnector(config *simplepg.ConnectionConfig, tokenProvider TokenProvider, logger simplepg.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (simplepg.Session, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to acquire %s token: %w: %w", c.tokenProvider, simplepg.ErrConnectFailure, err)
	}

	if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
		c.logger.Warn("%s token expires in %v", c.tokenProvider, remaining.Round(time.Second))
	}
	c.logger.Verbose("acquired %s token for %s", c.tokenProvider, c.config.Username)

	configWithToken := *c.config
	configWithToken.Password = token

	return openSession(ctx, &configWithToken, nil, c.logger)
}

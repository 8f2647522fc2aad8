package xero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/config"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

const (
	authorizeURL   = "https://login.xero.com/identity/connect/authorize"
	tokenURL       = "https://identity.xero.com/connect/token"
	connectionsURL = "https://api.xero.com/connections"
	apiBaseURL     = "https://api.xero.com/api.xro/2.0"

	defaultScopes = "offline_access accounting.transactions accounting.contacts accounting.settings"

	// Xero returns at most 100 records per page.
	pageSize = 100
)

// Connector implements the platform connector for Xero.
type Connector struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string
	client       *http.Client
	logger       *zap.Logger
}

// NewConnector creates a Xero connector from the app credentials.
func NewConnector(cfg config.XeroConfig, logger *zap.Logger) *Connector {
	scopes := cfg.Scopes
	if scopes == "" {
		scopes = defaultScopes
	}
	return &Connector{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		scopes:       scopes,
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Platform returns the platform tag.
func (c *Connector) Platform() platform.Platform {
	return platform.PlatformXero
}

// doJSON performs an authenticated JSON request against the accounting API.
// Every tenant-scoped call carries the Xero-tenant-id header.
func (c *Connector) doJSON(ctx context.Context, method, url, accessToken, tenantID string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if tenantID != "" {
		req.Header.Set("Xero-tenant-id", tenantID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("xero request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse xero response: %w", err)
		}
	}
	return nil
}

func (c *Connector) apiError(statusCode int, body []byte) error {
	apiErr := &platform.APIError{
		Platform:   platform.PlatformXero,
		StatusCode: statusCode,
		Body:       string(body),
	}
	var problem xProblemResponse
	if err := json.Unmarshal(body, &problem); err == nil {
		apiErr.Code = problem.Type
		apiErr.Message = problem.Message
		if apiErr.Message == "" {
			apiErr.Message = problem.Detail
		}
	}
	c.logger.Error("Xero API call failed",
		zap.Int("status_code", statusCode),
		zap.String("response", string(body)))
	return apiErr
}

func endpointURL(path string) string {
	return apiBaseURL + "/" + strings.TrimPrefix(path, "/")
}

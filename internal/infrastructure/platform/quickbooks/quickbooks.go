package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/config"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

const (
	authorizeURL  = "https://appcenter.intuit.com/connect/oauth2"
	tokenURL      = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	sandboxAPIURL = "https://sandbox-quickbooks.api.intuit.com"
	prodAPIURL    = "https://quickbooks.api.intuit.com"

	oauthScope   = "com.intuit.quickbooks.accounting"
	minorVersion = "65"

	// QuickBooks caps query pages at 1000 rows.
	pageSize = 1000

	// QuickBooks does not report a refresh-token expiry on the refresh
	// grant; the documented lifetime is rolled forward 60 days on each use.
	refreshTokenLifetime = 60 * 24 * time.Hour
)

// Connector implements the platform connector for QuickBooks Online.
type Connector struct {
	clientID     string
	clientSecret string
	redirectURI  string
	apiBaseURL   string
	client       *http.Client
	logger       *zap.Logger
}

// NewConnector creates a QuickBooks connector from the app credentials.
func NewConnector(cfg config.QuickBooksConfig, logger *zap.Logger) *Connector {
	base := prodAPIURL
	if cfg.Environment != "production" {
		base = sandboxAPIURL
	}
	return &Connector{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		apiBaseURL:   base,
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Platform returns the platform tag.
func (c *Connector) Platform() platform.Platform {
	return platform.PlatformQuickBooks
}

func (c *Connector) companyURL(realmID, path string) string {
	return fmt.Sprintf("%s/v3/company/%s/%s", c.apiBaseURL, realmID, path)
}

// doJSON performs an authenticated JSON request against the company-scoped
// API and decodes the response into out. Non-2xx responses become APIError
// carrying the platform's status code and raw body.
func (c *Connector) doJSON(ctx context.Context, method, url, accessToken string, body, out any) error {
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
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("quickbooks request failed: %w", err)
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
			return fmt.Errorf("failed to parse quickbooks response: %w", err)
		}
	}
	return nil
}

func (c *Connector) apiError(statusCode int, body []byte) error {
	apiErr := &platform.APIError{
		Platform:   platform.PlatformQuickBooks,
		StatusCode: statusCode,
		Body:       string(body),
	}
	var fault qbFaultResponse
	if err := json.Unmarshal(body, &fault); err == nil && len(fault.Fault.Error) > 0 {
		apiErr.Code = fault.Fault.Error[0].Code
		apiErr.Message = fault.Fault.Error[0].Message
	}
	c.logger.Error("QuickBooks API call failed",
		zap.Int("status_code", statusCode),
		zap.String("response", string(body)))
	return apiErr
}

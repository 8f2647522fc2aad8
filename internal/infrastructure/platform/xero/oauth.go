package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// AuthorizeURL builds the Xero OAuth authorization redirect URL.
func (c *Connector) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("scope", c.scopes)
	params.Set("state", state)
	return authorizeURL + "?" + params.Encode()
}

// ExchangeCode trades an authorization code for a token pair.
func (c *Connector) ExchangeCode(ctx context.Context, code string) (platform.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	return c.tokenRequest(ctx, form)
}

// Refresh exchanges the stored refresh token for a new token pair.
func (c *Connector) Refresh(ctx context.Context, current platform.Token) (platform.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", current.RefreshToken)
	return c.tokenRequest(ctx, form)
}

// tokenRequest posts to the token endpoint. Unlike QuickBooks, Xero takes
// the client credentials as form fields, and it reports the refresh-token
// lifetime in x_refresh_token_expires_in.
func (c *Connector) tokenRequest(ctx context.Context, form url.Values) (platform.Token, error) {
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return platform.Token{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Xero token request failed", zap.Error(err))
		return platform.Token{}, fmt.Errorf("xero token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return platform.Token{}, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return platform.Token{}, c.apiError(resp.StatusCode, respBody)
	}

	var tokenResp xTokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return platform.Token{}, fmt.Errorf("failed to parse token response: %w", err)
	}

	now := time.Now().UTC()
	return platform.Token{
		AccessToken:        tokenResp.AccessToken,
		AccessTokenExpiry:  now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
		RefreshToken:       tokenResp.RefreshToken,
		RefreshTokenExpiry: now.Add(time.Duration(tokenResp.RefreshTokenExpiresIn) * time.Second),
	}, nil
}

// Identity lists the tenants the token is authorized for and selects the
// first one. The realm hint is unused; Xero does not pass a tenant on the
// OAuth callback.
func (c *Connector) Identity(ctx context.Context, token platform.Token, _ string) (string, string, error) {
	var tenants []xTenant
	if err := c.doJSON(ctx, http.MethodGet, connectionsURL, token.AccessToken, "", nil, &tenants); err != nil {
		return "", "", fmt.Errorf("failed to list xero tenants: %w", err)
	}
	if len(tenants) == 0 {
		return "", "", fmt.Errorf("xero token is not authorized for any tenant")
	}
	return tenants[0].TenantID, tenants[0].TenantName, nil
}

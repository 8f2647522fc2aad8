package quickbooks

import (
	"context"
	"encoding/base64"
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

// AuthorizeURL builds the QuickBooks OAuth authorization redirect URL.
func (c *Connector) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("scope", oauthScope)
	params.Set("state", state)
	params.Set("response_type", "code")
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

// Refresh exchanges the stored refresh token for a new token pair. The
// platform rotates refresh tokens on every exchange.
func (c *Connector) Refresh(ctx context.Context, current platform.Token) (platform.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", current.RefreshToken)
	return c.tokenRequest(ctx, form)
}

// tokenRequest posts to the token endpoint with HTTP Basic client
// credentials, as QuickBooks requires.
func (c *Connector) tokenRequest(ctx context.Context, form url.Values) (platform.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return platform.Token{}, fmt.Errorf("failed to create token request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("QuickBooks token request failed", zap.Error(err))
		return platform.Token{}, fmt.Errorf("quickbooks token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return platform.Token{}, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return platform.Token{}, c.apiError(resp.StatusCode, respBody)
	}

	var tokenResp qbTokenResponse
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return platform.Token{}, fmt.Errorf("failed to parse token response: %w", err)
	}

	now := time.Now().UTC()
	return platform.Token{
		AccessToken:        tokenResp.AccessToken,
		AccessTokenExpiry:  now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
		RefreshToken:       tokenResp.RefreshToken,
		RefreshTokenExpiry: now.Add(refreshTokenLifetime),
	}, nil
}

// Identity resolves the realm id and company name. QuickBooks passes the
// realm id on the OAuth callback; the company name comes from CompanyInfo.
func (c *Connector) Identity(ctx context.Context, token platform.Token, realmHint string) (string, string, error) {
	if realmHint == "" {
		return "", "", fmt.Errorf("quickbooks callback did not include a realm id")
	}

	var info qbCompanyInfoResponse
	infoURL := c.companyURL(realmHint, "companyinfo/"+realmHint) + "?minorversion=" + minorVersion
	if err := c.doJSON(ctx, http.MethodGet, infoURL, token.AccessToken, nil, &info); err != nil {
		return "", "", fmt.Errorf("failed to fetch company info: %w", err)
	}

	return realmHint, info.CompanyInfo.CompanyName, nil
}

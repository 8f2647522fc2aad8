package platform

import "time"

// Token is the OAuth token pair held for one platform connection.
// Access tokens are short-lived; the refresh token is used to obtain a new
// pair once the access token expires. A connection whose refresh token has
// also expired cannot self-heal and must be re-authorized by the user.
type Token struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Valid reports whether the access token is usable at the given instant.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && t.AccessTokenExpiry.After(now)
}

// Refreshable reports whether the refresh token is usable at the given instant.
func (t Token) Refreshable(now time.Time) bool {
	return t.RefreshToken != "" && t.RefreshTokenExpiry.After(now)
}

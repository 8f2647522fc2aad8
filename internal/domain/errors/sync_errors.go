package errors

import "errors"

var (
	// ErrNoConnection indicates that no connection exists for the requested platform
	ErrNoConnection = errors.New("no connection found for platform")

	// ErrConnectionExists indicates that a connection for the same platform and realm already exists
	ErrConnectionExists = errors.New("connection already exists for platform")

	// ErrRefreshTokenExpired indicates a terminal token state: the connection must be re-authorized
	ErrRefreshTokenExpired = errors.New("refresh token expired; reconnect required")

	// ErrStaleTokenVersion indicates a token persist lost against a concurrent refresh
	ErrStaleTokenVersion = errors.New("stale token version")

	// ErrConnectionNotFound indicates the connection id does not exist
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrRecordNotFound indicates the requested local entity row does not exist
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidOAuthState indicates the OAuth callback carried an unknown or expired state value
	ErrInvalidOAuthState = errors.New("invalid or expired oauth state")

	// ErrUnsupportedOperation indicates the platform has no API for the requested operation
	ErrUnsupportedOperation = errors.New("operation not supported by platform")
)

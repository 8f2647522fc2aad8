package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainerrors "github.com/ledgerbridge/booksync/internal/domain/errors"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
)

// CommonResponse is the uniform envelope for every API response. Status
// mirrors the HTTP status code.
type CommonResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, CommonResponse{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func respondOK(c echo.Context, data any) error {
	return respond(c, http.StatusOK, "ok", data)
}

func respondCreated(c echo.Context, data any) error {
	return respond(c, http.StatusCreated, "created", data)
}

// respondError maps domain errors onto HTTP statuses. Unknown errors become
// an opaque 500; platform errors pass through the upstream status code and
// carry the platform's error payload in the data field so callers can see
// exactly what the platform rejected.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var apiErr *platform.APIError

	switch {
	case errors.Is(err, domainerrors.ErrNoConnection),
		errors.Is(err, domainerrors.ErrRefreshTokenExpired):
		return respond(c, http.StatusUnauthorized, err.Error(), nil)

	case errors.Is(err, domainerrors.ErrConnectionNotFound),
		errors.Is(err, domainerrors.ErrRecordNotFound):
		return respond(c, http.StatusNotFound, err.Error(), nil)

	case errors.Is(err, domainerrors.ErrConnectionExists):
		return respond(c, http.StatusConflict, err.Error(), nil)

	case errors.Is(err, domainerrors.ErrInvalidOAuthState),
		errors.Is(err, domainerrors.ErrUnsupportedOperation):
		return respond(c, http.StatusBadRequest, err.Error(), nil)

	case platform.IsConflict(err):
		return respond(c, http.StatusConflict, "record was modified on the platform; re-sync and retry", nil)

	case errors.As(err, &apiErr):
		logger.Error("Platform API error",
			zap.String("platform", string(apiErr.Platform)),
			zap.Int("upstream_status", apiErr.StatusCode),
			zap.String("code", apiErr.Code))
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return respond(c, status, apiErr.Message, echo.Map{
			"platform":        apiErr.Platform,
			"code":            apiErr.Code,
			"upstream_status": apiErr.StatusCode,
			"body":            apiErr.Body,
		})

	default:
		logger.Error("Unhandled request error", zap.Error(err))
		return respond(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

// ConnectionHandler exposes the OAuth connect/disconnect endpoints.
type ConnectionHandler struct {
	connections *usecase.ConnectionService
	logger      *zap.Logger
}

func NewConnectionHandler(connections *usecase.ConnectionService, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connections: connections,
		logger:      logger,
	}
}

// GetAuthorizeURL returns the platform's OAuth authorization URL with a
// fresh state nonce.
func (h *ConnectionHandler) GetAuthorizeURL(c echo.Context) error {
	p, err := platform.Parse(c.Param("platform"))
	if err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	authURL, err := h.connections.AuthorizeURL(c.Request().Context(), p)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondOK(c, echo.Map{"authorize_url": authURL})
}

// HandleCallback completes the OAuth flow. QuickBooks adds realmId to the
// callback query; Xero does not.
func (h *ConnectionHandler) HandleCallback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return respond(c, http.StatusBadRequest, "state and code query parameters are required", nil)
	}
	realmHint := c.QueryParam("realmId")

	conn, err := h.connections.CompleteCallback(c.Request().Context(), state, code, realmHint)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondOK(c, conn)
}

// ListConnections returns all persisted connections.
func (h *ConnectionHandler) ListConnections(c echo.Context) error {
	conns, err := h.connections.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, conns)
}

// GetConnection returns one connection by id.
func (h *ConnectionHandler) GetConnection(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid connection id", nil)
	}

	conn, err := h.connections.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, conn)
}

// Disconnect deletes a connection.
func (h *ConnectionHandler) Disconnect(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid connection id", nil)
	}

	if err := h.connections.Disconnect(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return respond(c, http.StatusOK, "disconnected", nil)
}

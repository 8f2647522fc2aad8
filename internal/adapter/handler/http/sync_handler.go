package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

// SyncHandler triggers sync cycles.
type SyncHandler struct {
	sync   *usecase.SyncService
	logger *zap.Logger
}

func NewSyncHandler(sync *usecase.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		sync:   sync,
		logger: logger,
	}
}

// SyncEntity runs one sync cycle for a platform and entity type.
func (h *SyncHandler) SyncEntity(c echo.Context) error {
	p, err := platform.Parse(c.Param("platform"))
	if err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	entity, err := platform.ParseEntityType(c.Param("entity"))
	if err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.sync.Sync(c.Request().Context(), p, entity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if result.AlreadyRunning {
		return respond(c, http.StatusAccepted, "sync already running", result)
	}
	if result.UpToDate {
		return respond(c, http.StatusOK, "already synced", result)
	}
	return respondOK(c, result)
}

// SyncAll runs one cycle for every entity type of a platform.
func (h *SyncHandler) SyncAll(c echo.Context) error {
	p, err := platform.Parse(c.Param("platform"))
	if err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	results, err := h.sync.SyncAll(c.Request().Context(), p)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, results)
}

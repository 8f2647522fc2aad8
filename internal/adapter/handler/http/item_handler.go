package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

// ItemHandler exposes the local item write path.
type ItemHandler struct {
	writes *usecase.WriteService
	logger *zap.Logger
}

func NewItemHandler(writes *usecase.WriteService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		writes: writes,
		logger: logger,
	}
}

type itemRequest struct {
	Platform       string          `json:"platform" validate:"omitempty,oneof=quickbooks xero"`
	Name           string          `json:"name" validate:"required"`
	SKU            string          `json:"sku"`
	Description    string          `json:"description"`
	ItemType       string          `json:"item_type"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	PurchaseCost   decimal.Decimal `json:"purchase_cost"`
	IncomeAccount  string          `json:"income_account"`
	ExpenseAccount string          `json:"expense_account"`
}

func (r *itemRequest) toModel() *model.UnifiedItem {
	return &model.UnifiedItem{
		SourceSystem:   platform.Platform(r.Platform),
		Name:           r.Name,
		SKU:            r.SKU,
		Description:    r.Description,
		ItemType:       r.ItemType,
		UnitPrice:      r.UnitPrice,
		PurchaseCost:   r.PurchaseCost,
		IncomeAccount:  r.IncomeAccount,
		ExpenseAccount: r.ExpenseAccount,
		Active:         true,
	}
}

// CreateItem adds an item on the platform and locally.
func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	if req.Platform == "" {
		return respond(c, http.StatusBadRequest, "platform is required", nil)
	}

	item := req.toModel()
	if err := h.writes.AddItem(c.Request().Context(), item); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondCreated(c, item)
}

// UpdateItem pushes a full update of an existing item.
func (h *ItemHandler) UpdateItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	item := req.toModel()
	item.ID = id
	if err := h.writes.EditItem(c.Request().Context(), item); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, item)
}

// SetItemStatus activates or deactivates an item.
func (h *ItemHandler) SetItemStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	item, err := h.writes.SetItemStatus(c.Request().Context(), id, *req.Active)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, item)
}

// GetItem returns one local item row.
func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	item, err := h.writes.GetItem(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, item)
}

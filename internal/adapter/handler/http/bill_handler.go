package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

// BillHandler exposes the local bill write path.
type BillHandler struct {
	writes *usecase.WriteService
	logger *zap.Logger
}

func NewBillHandler(writes *usecase.WriteService, logger *zap.Logger) *BillHandler {
	return &BillHandler{
		writes: writes,
		logger: logger,
	}
}

type billRequest struct {
	Platform         string        `json:"platform" validate:"omitempty,oneof=quickbooks xero"`
	VendorExternalID string        `json:"vendor_external_id" validate:"required"`
	IssueDate        string        `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate          string        `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Currency         string        `json:"currency" validate:"omitempty,len=3"`
	Lines            []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r *billRequest) toModel() *model.UnifiedBill {
	out := &model.UnifiedBill{
		SourceSystem:     platform.Platform(r.Platform),
		VendorExternalID: r.VendorExternalID,
		Currency:         r.Currency,
		IssueDate:        parseDateParam(r.IssueDate),
		DueDate:          parseDateParam(r.DueDate),
		LineItems:        encodeLines(r.Lines),
	}
	for _, l := range r.Lines {
		out.Subtotal = out.Subtotal.Add(l.Amount)
	}
	out.Total = out.Subtotal
	out.Balance = out.Total
	return out
}

// CreateBill adds a bill on the platform and locally.
func (h *BillHandler) CreateBill(c echo.Context) error {
	var req billRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	if req.Platform == "" {
		return respond(c, http.StatusBadRequest, "platform is required", nil)
	}

	bill := req.toModel()
	if err := h.writes.AddBill(c.Request().Context(), bill); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondCreated(c, bill)
}

// UpdateBill pushes a full update of an existing bill.
func (h *BillHandler) UpdateBill(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	var req billRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	bill := req.toModel()
	bill.ID = id
	if err := h.writes.EditBill(c.Request().Context(), bill); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, bill)
}

// GetBill returns one local bill row.
func (h *BillHandler) GetBill(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	bill, err := h.writes.GetBill(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, bill)
}

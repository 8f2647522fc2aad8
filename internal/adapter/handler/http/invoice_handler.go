package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

// InvoiceHandler exposes the local invoice write path, including the only
// hard-delete endpoint in the API.
type InvoiceHandler struct {
	writes *usecase.WriteService
	logger *zap.Logger
}

func NewInvoiceHandler(writes *usecase.WriteService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		writes: writes,
		logger: logger,
	}
}

type lineRequest struct {
	Description    string          `json:"description"`
	ItemExternalID string          `json:"item_external_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitAmount     decimal.Decimal `json:"unit_amount"`
	Amount         decimal.Decimal `json:"amount"`
}

type invoiceRequest struct {
	Platform           string        `json:"platform" validate:"omitempty,oneof=quickbooks xero"`
	CustomerExternalID string        `json:"customer_external_id" validate:"required"`
	InvoiceNumber      string        `json:"invoice_number"`
	IssueDate          string        `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate            string        `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Currency           string        `json:"currency" validate:"omitempty,len=3"`
	Lines              []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r *invoiceRequest) toModel() *model.UnifiedInvoice {
	out := &model.UnifiedInvoice{
		SourceSystem:       platform.Platform(r.Platform),
		CustomerExternalID: r.CustomerExternalID,
		InvoiceNumber:      r.InvoiceNumber,
		Currency:           r.Currency,
		IssueDate:          parseDateParam(r.IssueDate),
		DueDate:            parseDateParam(r.DueDate),
		LineItems:          encodeLines(r.Lines),
	}
	for _, l := range r.Lines {
		out.Subtotal = out.Subtotal.Add(l.Amount)
	}
	out.Total = out.Subtotal
	out.Balance = out.Total
	return out
}

func encodeLines(lines []lineRequest) datatypes.JSON {
	out := make([]model.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, model.InvoiceLine{
			Description:    l.Description,
			ItemExternalID: l.ItemExternalID,
			Quantity:       l.Quantity,
			UnitAmount:     l.UnitAmount,
			Amount:         l.Amount,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}

func parseDateParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &ts
}

// CreateInvoice adds an invoice on the platform and locally.
func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	if req.Platform == "" {
		return respond(c, http.StatusBadRequest, "platform is required", nil)
	}

	invoice := req.toModel()
	if err := h.writes.AddInvoice(c.Request().Context(), invoice); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondCreated(c, invoice)
}

// UpdateInvoice pushes a full update of an existing invoice.
func (h *InvoiceHandler) UpdateInvoice(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	invoice := req.toModel()
	invoice.ID = id
	if err := h.writes.EditInvoice(c.Request().Context(), invoice); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, invoice)
}

// DeleteInvoice voids or deletes the invoice on the platform, then removes
// the local row. ?void=true voids instead of deleting.
func (h *InvoiceHandler) DeleteInvoice(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}
	void := c.QueryParam("void") == "true"

	if err := h.writes.DeleteInvoice(c.Request().Context(), id, void); err != nil {
		return respondError(c, h.logger, err)
	}
	return respond(c, http.StatusOK, "deleted", nil)
}

// GetInvoice returns one local invoice row.
func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	invoice, err := h.writes.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, invoice)
}

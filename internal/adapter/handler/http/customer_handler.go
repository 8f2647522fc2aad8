package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

// CustomerHandler exposes the local customer write path.
type CustomerHandler struct {
	writes *usecase.WriteService
	logger *zap.Logger
}

func NewCustomerHandler(writes *usecase.WriteService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		writes: writes,
		logger: logger,
	}
}

type customerRequest struct {
	Platform     string `json:"platform" validate:"omitempty,oneof=quickbooks xero"`
	DisplayName  string `json:"display_name" validate:"required"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	CompanyName  string `json:"company_name"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	Region       string `json:"region"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

func (r *customerRequest) toModel() *model.UnifiedCustomer {
	return &model.UnifiedCustomer{
		SourceSystem: platform.Platform(r.Platform),
		DisplayName:  r.DisplayName,
		GivenName:    r.GivenName,
		FamilyName:   r.FamilyName,
		CompanyName:  r.CompanyName,
		Email:        r.Email,
		Phone:        r.Phone,
		AddressLine1: r.AddressLine1,
		City:         r.City,
		Region:       r.Region,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
		Active:       true,
	}
}

type statusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CreateCustomer adds a customer on the platform and locally.
func (h *CustomerHandler) CreateCustomer(c echo.Context) error {
	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	if req.Platform == "" {
		return respond(c, http.StatusBadRequest, "platform is required", nil)
	}

	customer := req.toModel()
	if err := h.writes.AddCustomer(c.Request().Context(), customer); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondCreated(c, customer)
}

// UpdateCustomer pushes a full update of an existing customer.
func (h *CustomerHandler) UpdateCustomer(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	customer := req.toModel()
	customer.ID = id
	if err := h.writes.EditCustomer(c.Request().Context(), customer); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, customer)
}

// SetCustomerStatus activates or deactivates a customer.
func (h *CustomerHandler) SetCustomerStatus(c echo.Context) error {
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

	customer, err := h.writes.SetCustomerStatus(c.Request().Context(), id, *req.Active)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, customer)
}

// GetCustomer returns one local customer row.
func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	customer, err := h.writes.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, customer)
}

func parseID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

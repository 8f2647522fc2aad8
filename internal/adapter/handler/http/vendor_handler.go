package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/usecase"
)

// VendorHandler exposes the local vendor write path.
type VendorHandler struct {
	writes *usecase.WriteService
	logger *zap.Logger
}

func NewVendorHandler(writes *usecase.WriteService, logger *zap.Logger) *VendorHandler {
	return &VendorHandler{
		writes: writes,
		logger: logger,
	}
}

type vendorRequest struct {
	Platform      string `json:"platform" validate:"omitempty,oneof=quickbooks xero"`
	DisplayName   string `json:"display_name" validate:"required"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	CompanyName   string `json:"company_name"`
	AccountNumber string `json:"account_number"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	AddressLine1  string `json:"address_line1"`
	City          string `json:"city"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

func (r *vendorRequest) toModel() *model.UnifiedVendor {
	return &model.UnifiedVendor{
		SourceSystem:  platform.Platform(r.Platform),
		DisplayName:   r.DisplayName,
		GivenName:     r.GivenName,
		FamilyName:    r.FamilyName,
		CompanyName:   r.CompanyName,
		AccountNumber: r.AccountNumber,
		Email:         r.Email,
		Phone:         r.Phone,
		AddressLine1:  r.AddressLine1,
		City:          r.City,
		Region:        r.Region,
		PostalCode:    r.PostalCode,
		Country:       r.Country,
		Active:        true,
	}
}

// CreateVendor adds a vendor on the platform and locally.
func (h *VendorHandler) CreateVendor(c echo.Context) error {
	var req vendorRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	if req.Platform == "" {
		return respond(c, http.StatusBadRequest, "platform is required", nil)
	}

	vendor := req.toModel()
	if err := h.writes.AddVendor(c.Request().Context(), vendor); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondCreated(c, vendor)
}

// UpdateVendor pushes a full update of an existing vendor.
func (h *VendorHandler) UpdateVendor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	var req vendorRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}

	vendor := req.toModel()
	vendor.ID = id
	if err := h.writes.EditVendor(c.Request().Context(), vendor); err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, vendor)
}

// SetVendorStatus activates or deactivates a vendor.
func (h *VendorHandler) SetVendorStatus(c echo.Context) error {
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

	vendor, err := h.writes.SetVendorStatus(c.Request().Context(), id, *req.Active)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, vendor)
}

// GetVendor returns one local vendor row.
func (h *VendorHandler) GetVendor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return respond(c, http.StatusBadRequest, "invalid id", nil)
	}

	vendor, err := h.writes.GetVendor(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return respondOK(c, vendor)
}

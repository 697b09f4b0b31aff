package handlers

import (
	"net/http"

	"garageflow/internal/common"
	"garageflow/internal/models"
	"garageflow/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// MGFleetHandlers handles Minimum Guarantee fleet contract requests
type MGFleetHandlers struct {
	mgService services.MGBillingService
}

func NewMGFleetHandlers(mgService services.MGBillingService) *MGFleetHandlers {
	return &MGFleetHandlers{mgService: mgService}
}

type CreateContractRequest struct {
	CustomerID       uuid.UUID       `json:"customer_id" validate:"required"`
	ContractType     string          `json:"contract_type" validate:"required,oneof=FIXED_KM VARIABLE_KM HYBRID"`
	AssuredKm        decimal.Decimal `json:"assured_km"`
	RatePerKm        decimal.Decimal `json:"rate_per_km"`
	VehicleIDs       []uuid.UUID     `json:"vehicle_ids" validate:"required,min=1"`
	StartDate        string          `json:"start_date" validate:"required"`
	EndDate          string          `json:"end_date" validate:"required"`
	BillingFrequency string          `json:"billing_frequency" validate:"omitempty,oneof=MONTHLY QUARTERLY"`
}

type VehicleLogRequest struct {
	ContractID uuid.UUID       `json:"contract_id" validate:"required"`
	VehicleID  uuid.UUID       `json:"vehicle_id" validate:"required"`
	LogDate    string          `json:"log_date" validate:"required"`
	OpeningKm  decimal.Decimal `json:"opening_km"`
	ClosingKm  decimal.Decimal `json:"closing_km"`
	Notes      string          `json:"notes" validate:"max=500"`
}

type CorrectVehicleLogRequest struct {
	ContractID uuid.UUID       `json:"contract_id" validate:"required"`
	OpeningKm  decimal.Decimal `json:"opening_km"`
	ClosingKm  decimal.Decimal `json:"closing_km"`
	Notes      string          `json:"notes" validate:"required,max=500"`
}

type GenerateBillRequest struct {
	BillingPeriod string `json:"billing_period" validate:"required"`
}

// CreateContract handles POST /mg-fleet/contracts
func (h *MGFleetHandlers) CreateContract(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CreateContractRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	start, err := common.ParseDate(req.StartDate, "start_date")
	if err != nil {
		return common.SendValidationError(c, "start_date", err.Error())
	}
	end, err := common.ParseDate(req.EndDate, "end_date")
	if err != nil {
		return common.SendValidationError(c, "end_date", err.Error())
	}

	contract, err := h.mgService.CreateContract(ctx, workshopID, services.CreateContractInput{
		CustomerID:       req.CustomerID,
		ContractType:     models.ContractType(req.ContractType),
		AssuredKm:        req.AssuredKm,
		RatePerKm:        req.RatePerKm,
		VehicleIDs:       req.VehicleIDs,
		StartDate:        start,
		EndDate:          end,
		BillingFrequency: models.BillingFrequency(req.BillingFrequency),
	})
	if err != nil {
		return common.SendDomainError(c, "create MG contract", err)
	}
	return c.JSON(http.StatusCreated, contract)
}

// GetContract handles GET /mg-fleet/contracts/:id
func (h *MGFleetHandlers) GetContract(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	contract, err := h.mgService.GetContract(ctx, workshopID, id)
	if err != nil {
		return common.SendDomainError(c, "get MG contract", err)
	}
	return c.JSON(http.StatusOK, contract)
}

// ListContracts handles GET /mg-fleet/contracts
func (h *MGFleetHandlers) ListContracts(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	contracts, err := h.mgService.ListContracts(ctx, workshopID)
	if err != nil {
		return common.SendDomainError(c, "list MG contracts", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"contracts": contracts,
		"count":     len(contracts),
	})
}

// EndContract handles POST /mg-fleet/contracts/:id/end
func (h *MGFleetHandlers) EndContract(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	contract, err := h.mgService.EndContract(ctx, workshopID, id)
	if err != nil {
		return common.SendDomainError(c, "end MG contract", err)
	}
	return c.JSON(http.StatusOK, contract)
}

// RecordVehicleLog handles POST /mg-fleet/vehicle-logs
func (h *MGFleetHandlers) RecordVehicleLog(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req VehicleLogRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	logDate, err := common.ParseDate(req.LogDate, "log_date")
	if err != nil {
		return common.SendValidationError(c, "log_date", err.Error())
	}

	entry, err := h.mgService.RecordVehicleLog(ctx, workshopID, services.VehicleLogInput{
		ContractID: req.ContractID,
		VehicleID:  req.VehicleID,
		LogDate:    logDate,
		OpeningKm:  req.OpeningKm,
		ClosingKm:  req.ClosingKm,
		Notes:      req.Notes,
	})
	if err != nil {
		return common.SendDomainError(c, "record vehicle log", err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// ListVehicleLogs handles GET /mg-fleet/contracts/:id/vehicles/:vehicle_id/logs?period=YYYY-MM
func (h *MGFleetHandlers) ListVehicleLogs(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	contractID, ok, err := pathID(c, "id")
	if !ok {
		return err
	}
	vehicleID, ok, err := pathID(c, "vehicle_id")
	if !ok {
		return err
	}

	logs, err := h.mgService.ListVehicleLogs(ctx, workshopID, contractID, vehicleID, c.QueryParam("period"))
	if err != nil {
		return common.SendDomainError(c, "list vehicle logs", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"contract_id": contractID,
		"vehicle_id":  vehicleID,
		"logs":        logs,
	})
}

// CorrectVehicleLog handles POST /mg-fleet/vehicle-logs/:id/correct
func (h *MGFleetHandlers) CorrectVehicleLog(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	var req CorrectVehicleLogRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	correction, err := h.mgService.CorrectVehicleLog(ctx, workshopID, id, services.CorrectVehicleLogInput{
		ContractID: req.ContractID,
		OpeningKm:  req.OpeningKm,
		ClosingKm:  req.ClosingKm,
		Notes:      req.Notes,
	})
	if err != nil {
		return common.SendDomainError(c, "correct vehicle log", err)
	}
	return c.JSON(http.StatusCreated, correction)
}

// GenerateBill handles POST /mg-fleet/contracts/:id/generate-bill
func (h *MGFleetHandlers) GenerateBill(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	var req GenerateBillRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	calc, err := h.mgService.GenerateBill(ctx, workshopID, id, req.BillingPeriod)
	if err != nil {
		return common.SendDomainError(c, "generate MG bill", err)
	}
	return c.JSON(http.StatusOK, calc)
}

// ListBills handles GET /mg-fleet/contracts/:id/bills
func (h *MGFleetHandlers) ListBills(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, ok, err := pathID(c, "id")
	if !ok {
		return err
	}

	bills, err := h.mgService.ListBills(ctx, workshopID, id)
	if err != nil {
		return common.SendDomainError(c, "list MG bills", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"contract_id": id,
		"bills":       bills,
	})
}

// FleetStats handles GET /mg-fleet/stats
func (h *MGFleetHandlers) FleetStats(c echo.Context) error {
	ctx := c.Request().Context()
	workshopID, ok := workshopFrom(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	stats, err := h.mgService.FleetStats(ctx, workshopID)
	if err != nil {
		return common.SendDomainError(c, "get fleet stats", err)
	}
	return c.JSON(http.StatusOK, stats)
}

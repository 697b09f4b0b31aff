package handlers

import (
	"net/http"

	"garageflow/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// workshopFrom returns the caller's workshop, set by the JWT middleware
func workshopFrom(c echo.Context) (uuid.UUID, bool) {
	return common.GetWorkshopIDFromContext(c.Request().Context())
}

// bindAndValidate decodes the body into req and runs the struct validator.
// When ok is false the error response has already been written.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, common.CreateErrorResponse("VALIDATION_ERROR", "Validation failed", common.ValidationDetails(err)))
	}
	return true, nil
}

// pathID parses a UUID path parameter, writing a validation error when malformed
func pathID(c echo.Context, name string) (uuid.UUID, bool, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, false, common.SendValidationError(c, name, err.Error())
	}
	return id, true, nil
}

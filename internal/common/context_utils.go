package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	WorkshopIDKey contextKey = "workshop_id"
	ActorNameKey  contextKey = "actor_name"
	RoleKey       contextKey = "role"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// ValidateUUID parses a path or query identifier
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s must be a valid UUID", fieldName)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight
func ParseDate(dateStr, fieldName string) (time.Time, error) {
	if strings.TrimSpace(dateStr) == "" {
		return time.Time{}, fmt.Errorf("%s is required", fieldName)
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}

	if date.After(time.Now().AddDate(10, 0, 0)) {
		return time.Time{}, fmt.Errorf("%s cannot be more than 10 years in the future", fieldName)
	}
	if date.Before(time.Now().AddDate(-100, 0, 0)) {
		return time.Time{}, fmt.Errorf("%s cannot be more than 100 years ago", fieldName)
	}

	return date, nil
}

// NormalizeText trims free text such as notes and enforces a length limit in characters.
// The text is stored as entered; JSON responses escape markup when rendered.
func NormalizeText(input string, fieldName string, maxLength int) (string, error) {
	text := strings.TrimSpace(input)
	if utf8.RuneCountInString(text) > maxLength {
		return "", fmt.Errorf("%s cannot exceed %d characters", fieldName, maxLength)
	}
	return text, nil
}

// SecureErrorMessage creates standardized error messages to prevent information leakage
func SecureErrorMessage(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: operation could not be completed", operation)
}

// WithActor returns a context carrying the authenticated user and workshop
func WithActor(ctx context.Context, userID, workshopID uuid.UUID, name string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, WorkshopIDKey, workshopID)
	return context.WithValue(ctx, ActorNameKey, name)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetWorkshopIDFromContext extracts the workshop ID from the request context
func GetWorkshopIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	workshopID, ok := ctx.Value(WorkshopIDKey).(uuid.UUID)
	return workshopID, ok
}

// GetActorFromContext returns the display name recorded on audit entries.
// Falls back to the user ID, then to "system" for scheduled work.
func GetActorFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ActorNameKey).(string); ok && name != "" {
		return name
	}
	if userID, ok := GetUserIDFromContext(ctx); ok {
		return userID.String()
	}
	return "system"
}

// WithRole records the caller's workshop role
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok && role != ""
}

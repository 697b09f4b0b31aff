package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garageflow/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const userContextKey = "user"

// JWTCustomClaims are issued by the identity service for workshop staff
type JWTCustomClaims struct {
	UserID     uuid.UUID `json:"user_id"`
	WorkshopID uuid.UUID `json:"workshop_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	jwt.RegisteredClaims
}

// Validate is called by the jwt parser after the registered claims pass
func (c *JWTCustomClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("token has no user_id")
	}
	if c.WorkshopID == uuid.Nil {
		return errors.New("token has no workshop_id")
	}
	return nil
}

// ParseJWTPayload copies the verified claims onto the request context
func ParseJWTPayload(c echo.Context, claims *JWTCustomClaims) (*JWTCustomClaims, error) {
	if err := claims.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = claims.UserID.String()
	}

	ctx := common.WithActor(c.Request().Context(), claims.UserID, claims.WorkshopID, name)
	if claims.Role != "" {
		ctx = common.WithRole(ctx, strings.ToLower(claims.Role))
	}
	c.SetRequest(c.Request().WithContext(ctx))
	return claims, nil
}

// NewJWKSKeyfunc fetches the identity provider's key set and keeps it fresh
// until ctx is cancelled.
func NewJWKSKeyfunc(ctx context.Context, jwksURL string) (jwt.Keyfunc, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Warn().Err(err).Str("jwks_url", jwksURL).Msg("failed to refresh JWKS")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}
	return jwks.Keyfunc, nil
}

// JWTConfig builds the echo-jwt configuration for the protected route group.
// A non-nil keyFunc takes precedence over the shared secret.
func JWTConfig(secret string, keyFunc jwt.Keyfunc) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(secret),
		KeyFunc:    keyFunc,
		ContextKey: userContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get(userContextKey).(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}
			if _, err := ParseJWTPayload(c, claims); err != nil {
				log.Warn().Err(err).Msg("discarding jwt payload")
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	}
}

// RequireWorkshop rejects requests that reached a handler without workshop context
func RequireWorkshop() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := common.GetWorkshopIDFromContext(c.Request().Context()); !ok {
				return common.SendUnauthorizedError(c)
			}
			return next(c)
		}
	}
}

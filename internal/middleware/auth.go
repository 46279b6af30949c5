package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"kpi-dashboard/pkg/jwtutil"
	"kpi-dashboard/pkg/logger"
	"kpi-dashboard/prometheus"
)

// bearerToken extracts the token from the Authorization header.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// Auth validates the user JWT from the Authorization header and stores
// the session identity in the request context.
func Auth(tokens *jwtutil.JWT) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			tokenString, ok := bearerToken(c)
			if !ok {
				log.Error("Missing or malformed Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			claims, err := tokens.ValidateUserToken(tokenString)
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// Store user info in context for later use
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("name", claims.Name)
			c.Set("tenant_role", claims.TenantRole)
			if claims.TenantID != nil {
				c.Set("tenant_id", *claims.TenantID)
			}

			return next(c)
		}
	}
}

// SuperAdminAuth validates a super-admin JWT. A structurally valid user
// token is rejected here: the claims must carry the super-admin flag in
// addition to a good signature.
func SuperAdminAuth(tokens *jwtutil.JWT) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			tokenString, ok := bearerToken(c)
			if !ok {
				log.Error("Missing or malformed Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			claims, err := tokens.ValidateSuperAdminToken(tokenString)
			if err != nil {
				log.Error("Invalid super admin token", zap.Error(err))
				prometheus.RecordAuthError("invalid_super_admin_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set("admin_id", claims.AdminID)
			c.Set("admin_email", claims.Email)
			c.Set("admin_name", claims.Name)

			return next(c)
		}
	}
}

// UserID returns the authenticated user id stored by Auth.
func UserID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

// TenantID returns the authenticated user's tenant, nil for legacy
// accounts created before tenancy.
func TenantID(c echo.Context) *string {
	if v, ok := c.Get("tenant_id").(string); ok {
		return &v
	}
	return nil
}

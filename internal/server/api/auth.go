package api

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ownerKey is the echo context key holding the authenticated owner id.
const ownerKey = "owner_id"

// JWTAuth verifies the Bearer token issued by the external identity
// provider and stores its subject claim as the owner id. The service
// never authenticates users itself; it only trusts tokens signed with
// the shared secret.
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "missing bearer token",
				})
			}

			claims := &jwt.RegisteredClaims{}
			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !parsed.Valid || claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "invalid token",
				})
			}

			c.Set(ownerKey, claims.Subject)
			return next(c)
		}
	}
}

// ownerID returns the authenticated owner id set by JWTAuth.
func ownerID(c echo.Context) string {
	id, _ := c.Get(ownerKey).(string)
	return id
}

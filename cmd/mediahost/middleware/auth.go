package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireUploadToken protects the upload endpoints with the pre-shared
// static token. The Authorization header must equal the configured
// token exactly; on mismatch the request is rejected before any body
// processing, with no detail leaked.
func RequireUploadToken(token string) echo.MiddlewareFunc {
	expected := []byte(token)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := []byte(c.Request().Header.Get("Authorization"))

			if subtle.ConstantTimeCompare(got, expected) != 1 {
				return c.NoContent(http.StatusUnauthorized)
			}

			return next(c)
		}
	}
}

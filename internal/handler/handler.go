package handler

import (
	"github.com/labstack/echo/v4"

	"certtrack/internal/auth"
	"certtrack/internal/errors"
)

// identityKey is where the router's resolve middleware stores the caller
// identity on the echo context. Handlers pull it out here and pass it
// explicitly into services; nothing below the handler layer reads ambient
// request state.
const identityKey = "identity"

// SetIdentity stores the resolved identity on the request context.
func SetIdentity(c echo.Context, id *auth.Identity) {
	c.Set(identityKey, id)
}

// identityFrom returns the resolved caller identity or an unauthorized error.
func identityFrom(c echo.Context) (*auth.Identity, error) {
	id, ok := c.Get(identityKey).(*auth.Identity)
	if !ok || id == nil {
		return nil, httpError(errors.ErrInvalidToken)
	}
	return id, nil
}

// httpError translates a domain error into an echo HTTP error with the
// standard response body.
func httpError(err error) *echo.HTTPError {
	he := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

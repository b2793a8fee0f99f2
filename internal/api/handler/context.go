package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// requireActor extracts the username claim injected by the Auth middleware
// and checks it against the username named in the request payload. Acting on
// behalf of another user is rejected before any service call.
func requireActor(c echo.Context, claimed string) error {
	username, _ := c.Get("username").(string)
	if username == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	if claimed != "" && claimed != username {
		return echo.NewHTTPError(http.StatusForbidden, "token does not match requested user")
	}
	return nil
}

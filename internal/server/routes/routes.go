package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/workbench"
)

// caseSession resolves the workbench session for a case, creating it on
// first use.
func caseSession(c echo.Context, caseID string) *workbench.Session {
	app := c.(*middleware.AppContext).App
	return app.Sessions.Get(c.Request().Context(), caseID)
}

// editErrorStatus maps workbench input errors to HTTP statuses. Anything
// not raised by user input is a server error.
func editErrorStatus(err error) int {
	switch {
	case errors.Is(err, workbench.ErrEmptyLabel),
		errors.Is(err, workbench.ErrSelfEdge),
		errors.Is(err, workbench.ErrNothingSelected):
		return http.StatusBadRequest
	case errors.Is(err, workbench.ErrUnknownNode),
		errors.Is(err, workbench.ErrUnknownEdge):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

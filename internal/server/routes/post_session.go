package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/pkg/workbench"
)

// PointerEventHandler feeds one pointer event into the interaction state
// machine: "down" starts a pan or node drag, "move" advances it, "up"
// ends it. Moves during a node drag persist the node position.
func PointerEventHandler(c echo.Context) error {
	type pointerData struct {
		CaseID string  `param:"id" validate:"required"`
		Event  string  `json:"event" validate:"required,oneof=down move up"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		NodeID string  `json:"node_id"`
	}

	type pointerResponse struct {
		Message     string              `json:"message"`
		View        workbench.Viewport  `json:"view"`
		Selection   workbench.Selection `json:"selection"`
		Interaction string              `json:"interaction"`
	}

	data := new(pointerData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, pointerResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, pointerResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	sess := caseSession(c, data.CaseID)

	var err error
	switch data.Event {
	case "down":
		err = sess.PointerDown(data.X, data.Y, data.NodeID)
	case "move":
		err = sess.PointerMove(c.Request().Context(), data.X, data.Y)
	case "up":
		sess.PointerUp()
	}
	if err != nil {
		return c.JSON(editErrorStatus(err), pointerResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, pointerResponse{
		Message:     "OK",
		View:        sess.View(),
		Selection:   sess.Selected(),
		Interaction: sess.InteractionState(),
	})
}

// WheelEventHandler applies one zoom step per wheel tick.
func WheelEventHandler(c echo.Context) error {
	type wheelData struct {
		CaseID string  `param:"id" validate:"required"`
		Delta  float64 `json:"delta"`
	}

	type wheelResponse struct {
		Message string             `json:"message"`
		View    workbench.Viewport `json:"view"`
	}

	data := new(wheelData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, wheelResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, wheelResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	sess := caseSession(c, data.CaseID)
	sess.Wheel(data.Delta)

	return c.JSON(http.StatusOK, wheelResponse{
		Message: "OK",
		View:    sess.View(),
	})
}

// DeleteSelectionHandler removes whatever is currently selected.
func DeleteSelectionHandler(c echo.Context) error {
	type deleteSelectionParams struct {
		CaseID string `param:"id" validate:"required"`
	}

	params := new(deleteSelectionParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	sess := caseSession(c, params.CaseID)
	if err := sess.DeleteSelected(c.Request().Context()); err != nil {
		return c.JSON(editErrorStatus(err), map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Selection deleted"})
}

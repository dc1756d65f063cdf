package server

import (
	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Export format schema, public for integrators
	e.GET("/api/schema/graph", routes.GetSchemaHandler)

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Graph snapshot routes
	apiRoutes.GET("/cases/:id/graph", routes.GetGraphHandler, middleware.RequireAnyPermission("case.view", "case.view:all"))
	apiRoutes.POST("/cases/:id/graph/extract", routes.ExtractGraphHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.POST("/cases/:id/graph/import", routes.ImportGraphHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.POST("/cases/:id/graph/asset", routes.LoadAssetHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.GET("/cases/:id/graph/export", routes.ExportGraphHandler, middleware.RequireAnyPermission("case.view", "case.view:all"))
	apiRoutes.POST("/cases/:id/graph/clear", routes.ClearGraphHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.POST("/cases/:id/graph/publish", routes.PublishGraphHandler, middleware.RequirePermission("case.publish"))

	// Node and edge editing routes
	apiRoutes.POST("/cases/:id/nodes", routes.CreateNodeHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.PATCH("/cases/:id/nodes/:node_id", routes.EditNodeHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.DELETE("/cases/:id/nodes/:node_id", routes.DeleteNodeHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.POST("/cases/:id/edges", routes.CreateEdgeHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.PATCH("/cases/:id/edges/:edge_id", routes.EditEdgeHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.DELETE("/cases/:id/edges/:edge_id", routes.DeleteEdgeHandler, middleware.RequirePermission("case.edit"))

	// Interaction session routes
	apiRoutes.POST("/cases/:id/session/pointer", routes.PointerEventHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.POST("/cases/:id/session/wheel", routes.WheelEventHandler, middleware.RequirePermission("case.edit"))
	apiRoutes.DELETE("/cases/:id/session/selection", routes.DeleteSelectionHandler, middleware.RequirePermission("case.edit"))

	// Read-only viewer route
	apiRoutes.GET("/cases/:id/view", routes.GetViewHandler, middleware.RequireAnyPermission("case.view", "case.view:all"))
}

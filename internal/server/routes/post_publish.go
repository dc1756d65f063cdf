package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/internal/storage"
)

func PublishGraphHandler(c echo.Context) error {
	type publishParams struct {
		CaseID string `param:"id" validate:"required"`
	}

	type publishResponse struct {
		Message   string `json:"message"`
		BundleURL string `json:"bundle_url,omitempty"`
	}

	params := new(publishParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, publishResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, publishResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	sess := caseSession(c, params.CaseID)
	if err := sess.Publish(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, publishResponse{Message: "Publish failed"})
	}

	resp := publishResponse{Message: "Graph published"}
	if s3Client := c.(*middleware.AppContext).App.S3; s3Client != nil {
		url, err := storage.GenerateDownloadLink(ctx, s3Client, params.CaseID)
		if err == nil {
			resp.BundleURL = url
		}
	}

	return c.JSON(http.StatusOK, resp)
}

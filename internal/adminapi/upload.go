package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/retouchshop/shopapi/internal/storage"
	"github.com/retouchshop/shopapi/internal/webserver"
)

type uploadPayload struct {
	File     string `json:"file"`
	Filename string `json:"filename"`
}

func registerUploadRoutes(g *webserver.Group, h *Handlers) {
	g.Preflight("")
	g.POST("", h.postUpload)
}

// postUpload stores a base64 (or data-URI) encoded photo and returns its URL.
func (h *Handlers) postUpload(c echo.Context) error {
	var payload uploadPayload
	if err := c.Echo().JSONSerializer.Deserialize(c, &payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if payload.File == "" {
		return fail(c, http.StatusBadRequest, "MISSING_FIELDS", "file data is required", nil)
	}
	filename := strings.TrimSpace(payload.Filename)
	if filename == "" {
		filename = storage.DefaultFilename()
	}

	data, err := storage.DecodePayload(payload.File)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error(), nil)
	}
	url, err := h.Uploader.Upload(c.Request().Context(), filename, data)
	if err != nil {
		zap.L().Warn("adminapi: upload relay failed", zap.String("filename", filename), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error(), nil)
	}
	return ok(c, echo.Map{"url": url})
}

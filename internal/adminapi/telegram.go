package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/retouchshop/shopapi/internal/telegram"
	"github.com/retouchshop/shopapi/internal/webserver"
)

func registerTelegramRoutes(g *webserver.Group, h *Handlers) {
	g.Preflight("")
	g.POST("", h.postRetouchRequest)
}

// postRetouchRequest relays a customer's retouch request to the shop's
// Telegram channel.
// Request JSON: { "photo_url": "https://...", "name": "", "phone": "", "comment": "" }
func (h *Handlers) postRetouchRequest(c echo.Context) error {
	var payload telegram.RetouchRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	payload = payload.WithDefaults()
	if payload.PhotoURL == "" {
		return fail(c, http.StatusBadRequest, "MISSING_FIELDS", "photo_url is required", nil)
	}

	if !h.Notifier.HasToken() || !h.Notifier.HasChatId() {
		zap.L().Error("adminapi: telegram credentials not configured",
			zap.Bool("has_token", h.Notifier.HasToken()),
			zap.Bool("has_chat_id", h.Notifier.HasChatId()),
		)
		return fail(c, http.StatusInternalServerError, "NOT_CONFIGURED", "Telegram credentials not configured", map[string]bool{
			"has_token":   h.Notifier.HasToken(),
			"has_chat_id": h.Notifier.HasChatId(),
		})
	}

	err := h.Notifier.SendPhoto(c.Request().Context(), payload.PhotoURL, payload.Caption())
	var apiErr *telegram.APIError
	switch {
	case errors.As(err, &apiErr):
		return fail(c, http.StatusInternalServerError, "TELEGRAM_ERROR", "Telegram API error", apiErr.Body)
	case err != nil:
		zap.L().Warn("adminapi: telegram relay failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "SEND_FAILED", err.Error(), nil)
	}
	return ok(c, echo.Map{"success": true, "message": "Sent to Telegram"})
}

package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"cafe.GO/api"
	"cafe.GO/core/profile"
)

func init() {
	api.RegisterRoute(RegisterChatRoutes)
}

type messageRequest struct {
	Content string `json:"content"`
}

func RegisterChatRoutes(e *echo.Echo, d *api.Deps) {
	g := e.Group("/chat")

	g.GET("", func(c echo.Context) error {
		msgs := d.Chat.Transcript(profile.ID(c)).Messages()
		return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
	})

	// POST /chat/messages {content} – returns the assistant's reply
	g.POST("/messages", func(c echo.Context) error {
		var body messageRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		text := strings.TrimSpace(body.Content)
		if text == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
		}
		reply, err := d.Chat.Send(c.Request().Context(), profile.ID(c), text)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"reply":    reply,
			"messages": d.Chat.Transcript(profile.ID(c)).Messages(),
		})
	})
}

package chatbot

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Message is a chat widget submission.
type Message struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/chat", h.Chat)
}

func (h *Handler) Chat(c echo.Context) error {
	var m Message
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(m.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	r, err := h.bot.Reply(c.Request().Context(), m.Email, m.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

package notification

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/internal/platform/repository"
	"github.com/carelink/carelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/users/:id/notifications", h.ListForUser)
	api.POST("/notifications", h.Create)
	api.POST("/notifications/:id/read", h.MarkRead)
}

func (h *Handler) ListForUser(c echo.Context) error {
	items := h.svc.ForUser(c.Request().Context(), c.Param("id"))
	resp := pagination.Page(items, pagination.FromContext(c))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"unread":        Unread(items),
		"notifications": resp,
	})
}

func (h *Handler) Create(c echo.Context) error {
	var n Notification
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), n)
	if err != nil {
		var fe *backend.FieldError
		if errors.As(err, &fe) {
			return echo.NewHTTPError(http.StatusBadRequest, fe.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) MarkRead(c echo.Context) error {
	n, err := h.svc.MarkRead(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

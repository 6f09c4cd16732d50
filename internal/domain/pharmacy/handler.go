package pharmacy

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

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
	api.GET("/orders", h.ListOrders)
	api.GET("/pharmacies/:id/orders", h.PharmacyOrders)
	api.GET("/patients/:id/orders", h.PatientOrders)
	api.PATCH("/orders/:id/status", h.UpdateStatus)
}

func (h *Handler) ListOrders(c echo.Context) error {
	items := h.svc.ListOrders(c.Request().Context())
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) PharmacyOrders(c echo.Context) error {
	items := h.svc.OrdersForPharmacy(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) PatientOrders(c echo.Context) error {
	items := h.svc.OrdersForPatient(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.UpdateOrderStatus(c.Request().Context(), c.Param("id"), req.Status)
	switch {
	case errors.Is(err, ErrUnknownStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, o)
}

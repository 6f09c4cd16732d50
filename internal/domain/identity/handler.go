package identity

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
	api.GET("/users", h.ListUsers)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.GET("/guardians", h.ListGuardians)
	api.GET("/pharmacies", h.ListPharmacies)
}

func (h *Handler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	var users []User
	if role := c.QueryParam("role"); role != "" {
		users = h.svc.UsersByRole(ctx, role)
	} else {
		users = h.svc.ListUsers(ctx)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return c.JSON(http.StatusOK, pagination.Page(users, pagination.FromContext(c)))
}

func (h *Handler) ListPatients(c echo.Context) error {
	ctx := c.Request().Context()
	if email := c.QueryParam("email"); email != "" {
		p, err := h.svc.PatientByEmail(ctx, email)
		if err != nil {
			return notFound(err, "patient not found")
		}
		return c.JSON(http.StatusOK, p)
	}
	return c.JSON(http.StatusOK, pagination.Page(h.svc.ListPatients(ctx), pagination.FromContext(c)))
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	ctx := c.Request().Context()
	if email := c.QueryParam("email"); email != "" {
		d, err := h.svc.DoctorByEmail(ctx, email)
		if err != nil {
			return notFound(err, "doctor not found")
		}
		return c.JSON(http.StatusOK, d)
	}
	return c.JSON(http.StatusOK, pagination.Page(h.svc.ListDoctors(ctx), pagination.FromContext(c)))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	d, err := h.svc.GetDoctor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return notFound(err, "doctor not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListGuardians(c echo.Context) error {
	return c.JSON(http.StatusOK, pagination.Page(h.svc.ListGuardians(c.Request().Context()), pagination.FromContext(c)))
}

func (h *Handler) ListPharmacies(c echo.Context) error {
	return c.JSON(http.StatusOK, pagination.Page(h.svc.ListPharmacies(c.Request().Context()), pagination.FromContext(c)))
}

func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

package care

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/backend"
	"github.com/carelink/carelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.BookAppointment)
	api.GET("/patients/:id/appointments", h.PatientAppointments)
	api.GET("/doctors/:id/appointments", h.DoctorAppointments)
	api.GET("/patients/:id/prescriptions", h.PatientPrescriptions)
	api.GET("/doctors/:id/prescriptions", h.DoctorPrescriptions)
	api.GET("/patients/:id/vitals", h.PatientVitals)
	api.GET("/patients/:id/lab-reports", h.PatientLabReports)
	api.GET("/lab-reports/:id", h.GetLabReport)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	items := h.svc.ListAppointments(c.Request().Context())
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) BookAppointment(c echo.Context) error {
	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.BookAppointment(c.Request().Context(), req)
	if err != nil {
		var fe *backend.FieldError
		if errors.As(err, &fe) {
			return echo.NewHTTPError(http.StatusBadRequest, fe.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) PatientAppointments(c echo.Context) error {
	items := h.svc.AppointmentsForPatient(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) DoctorAppointments(c echo.Context) error {
	items := h.svc.AppointmentsForDoctor(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) PatientPrescriptions(c echo.Context) error {
	items := h.svc.PrescriptionsForPatient(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) DoctorPrescriptions(c echo.Context) error {
	items := h.svc.PrescriptionsForDoctor(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) PatientVitals(c echo.Context) error {
	items := h.svc.VitalsForPatient(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) PatientLabReports(c echo.Context) error {
	items := h.svc.LabReportsForPatient(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, pagination.Page(items, pagination.FromContext(c)))
}

func (h *Handler) GetLabReport(c echo.Context) error {
	r, err := h.svc.GetLabReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "lab report not found")
	}
	return c.JSON(http.StatusOK, r)
}

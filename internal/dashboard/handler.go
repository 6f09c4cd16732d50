package dashboard

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Page is the response body of every page request.
type Page struct {
	Page string      `json:"page"`
	Path string      `json:"path"`
	View interface{} `json:"view,omitempty"`
}

type Handler struct {
	b *Builder
}

func NewHandler(b *Builder) *Handler {
	return &Handler{b: b}
}

// RegisterRoutes serves the page selector on every GET path not claimed by
// a more specific route.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Serve)
	e.GET("/*", h.Serve)
}

func (h *Handler) Serve(c echo.Context) error {
	ctx := c.Request().Context()
	path := c.Request().URL.Path
	email := c.QueryParam("user")

	var (
		view interface{}
		err  error
	)
	page := Select(path)
	switch page {
	case PageMarketing:
		view = Marketing()
	case PageLogin:
		view = h.b.Login(ctx)
	case PagePatient:
		view, err = h.b.Patient(ctx, email)
	case PageDoctor:
		view, err = h.b.Doctor(ctx, email)
	case PageGuardian:
		view, err = h.b.Guardian(ctx, email)
	case PagePharmacy:
		view, err = h.b.Pharmacy(ctx, email)
	case PageAdmin:
		view, err = h.b.Admin(ctx)
	default:
		return c.JSON(http.StatusNotFound, Page{Page: PageNotFound, Path: path})
	}

	if errors.Is(err, ErrNoViewer) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, Page{Page: page, Path: path, View: view})
}

package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts limit and offset query parameters, clamping the limit
// to MaxLimit.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Response wraps a paginated API response. NextOffset and PrevOffset are
// set only when that page exists.
type Response struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
	HasMore    bool        `json:"has_more"`
	NextOffset *int        `json:"next_offset,omitempty"`
	PrevOffset *int        `json:"prev_offset,omitempty"`
}

// Page slices items to the requested window. Backends return whole
// collections, so paging happens after the fetch.
func Page[T any](items []T, p Params) *Response {
	total := len(items)
	start := min(p.Offset, total)
	end := start + min(p.Limit, total-start)
	window := items[start:end]
	if window == nil {
		window = []T{}
	}

	resp := &Response{
		Data:    window,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: end < total,
	}
	if resp.HasMore {
		next := end
		resp.NextOffset = &next
	}
	if start > 0 {
		prev := max(start-p.Limit, 0)
		resp.PrevOffset = &prev
	}
	return resp
}

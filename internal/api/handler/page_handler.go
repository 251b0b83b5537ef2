package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daily-journal/blog/internal/api/view"
)

// PageHandler serves the fixed informational pages.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// About renders the about page.
//
// @Summary      About page
// @Tags         pages
// @Produce      html
// @Success      200
// @Router       /about [get]
func (h *PageHandler) About(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageAbout, nil)
}

// Contact renders the contact page.
//
// @Summary      Contact page
// @Tags         pages
// @Produce      html
// @Success      200
// @Router       /contact [get]
func (h *PageHandler) Contact(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageContact, nil)
}

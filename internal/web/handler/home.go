package handler

import (
	"net/http"

	"github.com/mcoot/plans/internal/web/middleware"
	"github.com/mcoot/plans/internal/web/templates/layout"
	"github.com/mcoot/plans/internal/web/templates/pages"
)

// HomeHandler handles the home page
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{
		PageData: layout.PageData{
			Title:   "Home",
			Account: middleware.GetAccount(r.Context()),
			Flash:   middleware.GetFlash(r.Context()),
		},
	}

	render(w, r, pages.Home(data))
}

package pages

import "github.com/mcoot/plans/internal/web/templates/layout"

// HomeData holds data for the landing page
type HomeData struct {
	layout.PageData
}

// LoginData holds data for the login page
type LoginData struct {
	layout.PageData
}

// RegisterData holds data for the registration page
type RegisterData struct {
	layout.PageData
}

// PlansData holds data for the plan list page
type PlansData struct {
	layout.PageData
	AccountID string
	Username  string
	Entries   []string
}

// ErrorData holds data for the error page
type ErrorData struct {
	layout.PageData
	Status  int
	Message string
}

package layout

import "github.com/mcoot/plans/internal/model"

// FlashMessage is a one-shot notice carried across a redirect
type FlashMessage struct {
	Type    string
	Message string
}

// PageData holds data shared by every page
type PageData struct {
	Title   string
	Account *model.Account
	Flash   *FlashMessage
}

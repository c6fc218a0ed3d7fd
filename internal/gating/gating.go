// Package gating decides how the storefront treats guests.
package gating

import "orgroles/internal/models"

type Page string

const (
	PageProduct  Page = "product"
	PageCart     Page = "cart"
	PageCheckout Page = "checkout"
)

func ParsePage(s string) (Page, bool) {
	switch p := Page(s); p {
	case PageProduct, PageCart, PageCheckout:
		return p, true
	case "":
		return PageProduct, true
	}
	return "", false
}

const (
	DefaultAddToCartText = "Add to cart"
	GuestAddToCartText   = "Login to purchase"
)

// Policy is the storefront behaviour for one page and caller.
type Policy struct {
	Page          Page   `json:"page"`
	Purchasable   bool   `json:"purchasable"`
	ShowPrice     bool   `json:"show_price"`
	AddToCartText string `json:"add_to_cart_text"`
	AddToCartURL  string `json:"add_to_cart_url,omitempty"`
	RedirectTo    string `json:"redirect_to,omitempty"`
}

type Gate struct {
	MyAccountURL string
}

// Evaluate applies the guest purchase settings. Logged-in callers are never
// restricted.
func (g Gate) Evaluate(st models.Settings, loggedIn bool, page Page) Policy {
	p := Policy{
		Page:          page,
		Purchasable:   true,
		ShowPrice:     loggedIn || st.GuestCanSeePrice,
		AddToCartText: DefaultAddToCartText,
	}
	if loggedIn || !st.DisableGuestPurchase {
		return p
	}

	p.Purchasable = false
	p.AddToCartText = GuestAddToCartText
	p.AddToCartURL = g.MyAccountURL
	if page == PageCart || page == PageCheckout {
		p.RedirectTo = g.MyAccountURL
	}
	return p
}

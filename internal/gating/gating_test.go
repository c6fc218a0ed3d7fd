package gating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"orgroles/internal/gating"
	"orgroles/internal/models"
)

func TestEvaluate(t *testing.T) {
	g := gating.Gate{MyAccountURL: "/my-account"}
	defaults := models.DefaultSettings()
	open := defaults
	open.DisableGuestPurchase = false
	hidden := defaults
	hidden.GuestCanSeePrice = false

	tests := []struct {
		name     string
		settings models.Settings
		loggedIn bool
		page     gating.Page
		want     gating.Policy
	}{
		{
			name: "guest product", settings: defaults, page: gating.PageProduct,
			want: gating.Policy{Page: gating.PageProduct, ShowPrice: true, AddToCartText: "Login to purchase", AddToCartURL: "/my-account"},
		},
		{
			name: "guest checkout", settings: defaults, page: gating.PageCheckout,
			want: gating.Policy{Page: gating.PageCheckout, ShowPrice: true, AddToCartText: "Login to purchase", AddToCartURL: "/my-account", RedirectTo: "/my-account"},
		},
		{
			name: "guest with hidden prices", settings: hidden, page: gating.PageCart,
			want: gating.Policy{Page: gating.PageCart, AddToCartText: "Login to purchase", AddToCartURL: "/my-account", RedirectTo: "/my-account"},
		},
		{
			name: "gating off", settings: open, page: gating.PageCart,
			want: gating.Policy{Page: gating.PageCart, Purchasable: true, ShowPrice: true, AddToCartText: "Add to cart"},
		},
		{
			name: "customer", settings: hidden, loggedIn: true, page: gating.PageCheckout,
			want: gating.Policy{Page: gating.PageCheckout, Purchasable: true, ShowPrice: true, AddToCartText: "Add to cart"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Evaluate(tt.settings, tt.loggedIn, tt.page))
		})
	}
}

func TestParsePage(t *testing.T) {
	p, ok := gating.ParsePage("")
	assert.True(t, ok)
	assert.Equal(t, gating.PageProduct, p)

	_, ok = gating.ParsePage("account")
	assert.False(t, ok)
}

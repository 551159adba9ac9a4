package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// Home handles GET /.
func Home(cx *ctx.Context) {
	cx.String(http.StatusOK, "Storefront API is now running")
}

package routes

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Controllers bundles what the API routes dispatch to.
type Controllers struct {
	Products *controllers.ProductController
	Auth     *controllers.AuthController
	Cart     *controllers.CartController
	Upload   *controllers.UploadController

	// Tokens guards the cart routes.
	Tokens middleware.TokenValidator

	// Images backs GET /images/*. Nil disables static serving.
	Images http.FileSystem
}

func RegisterAPI(r *router.Router, c Controllers) {
	r.Get("/", "home", ctx.Wrap(controllers.Home))

	r.Post("/upload", "images.upload", ctx.Wrap(c.Upload.Upload))
	if c.Images != nil {
		r.Static("/images", "images.show", c.Images)
	}

	r.Post("/addproduct", "products.add", ctx.Wrap(c.Products.Add))
	r.Post("/removeproduct", "products.remove", ctx.Wrap(c.Products.Remove))
	r.Get("/allproducts", "products.all", ctx.Wrap(c.Products.All))
	r.Get("/newcollections", "products.new", ctx.Wrap(c.Products.NewCollections))
	r.Get("/popular", "products.popular", ctx.Wrap(c.Products.Popular))

	r.Post("/signup", "auth.signup", ctx.Wrap(c.Auth.Signup))
	r.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))

	cart := r.Group("", middleware.Auth(c.Tokens))
	cart.Post("/addtocart", "cart.add", ctx.Wrap(c.Cart.Add))
	cart.Post("/removefromcart", "cart.remove", ctx.Wrap(c.Cart.Remove))
	cart.Post("/getcart", "cart.show", ctx.Wrap(c.Cart.Get))
}

package controllers

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// Carts mutates and reads the signed-in user's cart.
type Carts interface {
	AddToCart(ctx context.Context, userID string, itemID int64) error
	RemoveFromCart(ctx context.Context, userID string, itemID int64) error
	GetCart(ctx context.Context, userID string) (map[string]int, error)
}

type CartController struct {
	carts Carts
}

func NewCartController(carts Carts) *CartController {
	return &CartController{carts: carts}
}

type cartItemInput struct {
	ItemID *models.FlexInt `json:"itemId" validate:"required"`
}

// Add handles POST /addtocart.
func (c *CartController) Add(cx *ctx.Context) {
	var in cartItemInput
	if !cx.BindJSON(&in) {
		return
	}

	err := c.carts.AddToCart(cx.Context(), cx.UserID(), int64(*in.ItemID))
	if c.handleError(cx, "add to cart failed", err) {
		return
	}
	cx.OK(map[string]interface{}{"success": true, "message": "Added"})
}

// Remove handles POST /removefromcart.
func (c *CartController) Remove(cx *ctx.Context) {
	var in cartItemInput
	if !cx.BindJSON(&in) {
		return
	}

	err := c.carts.RemoveFromCart(cx.Context(), cx.UserID(), int64(*in.ItemID))
	if c.handleError(cx, "remove from cart failed", err) {
		return
	}
	cx.OK(map[string]interface{}{"success": true, "message": "Removed"})
}

// Get handles POST /getcart.
func (c *CartController) Get(cx *ctx.Context) {
	cart, err := c.carts.GetCart(cx.Context(), cx.UserID())
	if c.handleError(cx, "get cart failed", err) {
		return
	}
	cx.OK(cart)
}

// handleError writes the response for err and reports whether it did.
func (c *CartController) handleError(cx *ctx.Context, msg string, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, services.ErrInvalidItem), errors.Is(err, services.ErrUnknownItem):
		cx.Fail(err.Error())
	case errors.Is(err, repositories.ErrUserNotFound):
		// The token is genuine but its account no longer exists.
		response.Unauthorized(cx.W, "Please authenticate using a valid token")
	default:
		cx.InternalError(msg, err)
	}
	return true
}

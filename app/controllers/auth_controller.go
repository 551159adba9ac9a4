package controllers

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// Accounts registers and signs in users.
type Accounts interface {
	Signup(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthController struct {
	accounts Accounts
}

func NewAuthController(accounts Accounts) *AuthController {
	return &AuthController{accounts: accounts}
}

type signupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /signup.
func (c *AuthController) Signup(cx *ctx.Context) {
	var in signupInput
	if !cx.BindJSON(&in) {
		return
	}

	token, err := c.accounts.Signup(cx.Context(), in.Username, in.Email, in.Password)
	if errors.Is(err, services.ErrEmailTaken) || errors.Is(err, services.ErrPasswordTooLong) {
		cx.Fail(err.Error())
		return
	}
	if err != nil {
		cx.InternalError("signup failed", err)
		return
	}

	cx.OK(map[string]interface{}{"success": true, "token": token})
}

// Login handles POST /login.
func (c *AuthController) Login(cx *ctx.Context) {
	var in loginInput
	if !cx.BindJSON(&in) {
		return
	}

	token, err := c.accounts.Login(cx.Context(), in.Email, in.Password)
	if errors.Is(err, services.ErrWrongEmail) || errors.Is(err, services.ErrWrongPassword) {
		cx.Fail(err.Error())
		return
	}
	if err != nil {
		cx.InternalError("login failed", err)
		return
	}

	cx.OK(map[string]interface{}{"success": true, "token": token})
}

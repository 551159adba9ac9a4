// Package ctx wraps a request/response pair for storefront handlers.
//
//	func (c *CartController) Add(cx *ctx.Context) {
//	    var in AddInput
//	    if !cx.BindJSON(&in) {
//	        return // failure already written
//	    }
//	    cx.JSON(http.StatusOK, ...)
//	}
//
//	router.Post("/addtocart", "cart.add", ctx.Wrap(cc.Add))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Log returns the request-scoped logger.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// UserID returns the authenticated user id, or "" on public routes.
func (c *Context) UserID() string {
	id, _ := auth.FromCtx(c.R.Context())
	return id.ID
}

// BaseURL is the scheme and host the client used, honouring
// X-Forwarded-Proto and X-Forwarded-Host from a reverse proxy.
func (c *Context) BaseURL() string {
	scheme := "http"
	if c.R.TLS != nil {
		scheme = "https"
	}
	if p := c.R.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.SplitN(p, ",", 2)[0])
	}

	host := c.R.Host
	if h := c.R.Header.Get("X-Forwarded-Host"); h != "" {
		host = strings.TrimSpace(strings.SplitN(h, ",", 2)[0])
	}
	return scheme + "://" + host
}

// BindJSON decodes and validates the body into dest. On failure it writes
// {"success":false,"errors":...} with 200, as clients expect for form errors,
// and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Fail(err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.Fail(errs)
		return false
	}
	return true
}

// JSON writes v with status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// OK writes v with 200.
func (c *Context) OK(v any) { c.JSON(http.StatusOK, v) }

// Fail writes a business failure: 200 {"success":false,"errors":errs}.
func (c *Context) Fail(errs any) {
	c.status = http.StatusOK
	response.Fail(c.W, http.StatusOK, errs)
}

// Abort writes {"success":false,"errors":message} with a non-200 code.
func (c *Context) Abort(code int, message string) {
	c.status = code
	response.Fail(c.W, code, message)
}

// InternalError logs err and writes a generic 500.
func (c *Context) InternalError(msg string, err error) {
	c.Log().Error(msg, "error", err)
	c.status = http.StatusInternalServerError
	response.InternalError(c.W)
}

// String writes a plain-text response.
func (c *Context) String(code int, format string, args ...any) {
	c.status = code
	response.Text(c.W, code, format, args...)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

var errBoom = errors.New("boom")

type stubCatalog struct {
	added   models.NewProduct
	removed *models.Product
	list    []models.Product
	err     error
}

func (s *stubCatalog) AddProduct(_ context.Context, in models.NewProduct) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.added = in
	return &models.Product{ID: 1, Name: in.Name}, nil
}

func (s *stubCatalog) RemoveProduct(context.Context, int64) (*models.Product, error) {
	return s.removed, s.err
}

func (s *stubCatalog) ListProducts(context.Context) ([]models.Product, error) { return s.list, s.err }

func (s *stubCatalog) ListNewCollections(context.Context) ([]models.Product, error) {
	return s.list, s.err
}

func (s *stubCatalog) ListPopular(context.Context) ([]models.Product, error) { return s.list, s.err }

type stubAccounts struct{ err error }

func (s stubAccounts) Signup(context.Context, string, string, string) (string, error) {
	return "tok", s.err
}

func (s stubAccounts) Login(context.Context, string, string) (string, error) { return "tok", s.err }

type stubCarts struct {
	user string
	item int64
	err  error
}

func (s *stubCarts) AddToCart(_ context.Context, userID string, itemID int64) error {
	s.user, s.item = userID, itemID
	return s.err
}

func (s *stubCarts) RemoveFromCart(_ context.Context, userID string, itemID int64) error {
	s.user, s.item = userID, itemID
	return s.err
}

func (s *stubCarts) GetCart(_ context.Context, userID string) (map[string]int, error) {
	s.user = userID
	if s.err != nil {
		return nil, s.err
	}
	return models.Cart{"3": 2}.Dense(5), nil
}

type stubUploader struct {
	body  string
	thumb bool
	err   error
}

func (s *stubUploader) Store(_ context.Context, field, name string, r io.Reader) (*services.StoredImage, error) {
	if s.err != nil {
		return nil, s.err
	}
	b, _ := io.ReadAll(r)
	s.body = string(b)
	img := &services.StoredImage{Name: field + "_1" + ".png", Path: "images/" + field + "_1.png"}
	if s.thumb {
		img.ThumbnailPath = "images/thumbs/" + field + "_1.jpg"
	}
	return img, nil
}

func (s *stubUploader) URL(p string) string { return "/" + p }

func serve(h ctx.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ctx.Wrap(h)(rec, req)
	return rec
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, id string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{ID: id}))
}

func TestAddProduct(t *testing.T) {
	catalog := &stubCatalog{}
	c := NewProductController(catalog)

	rec := serve(c.Add, jsonReq(http.MethodPost, "/addproduct",
		`{"name":"Shirt","image":"http://x/i.png","category":"men","new_price":10,"old_price":20}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"name":"Shirt"}`, rec.Body.String())
	assert.Equal(t, "men", catalog.added.Category)
	assert.EqualValues(t, 20, catalog.added.OldPrice)
}

func TestAddProductAcceptsPricesAsStrings(t *testing.T) {
	catalog := &stubCatalog{}
	c := NewProductController(catalog)

	rec := serve(c.Add, jsonReq(http.MethodPost, "/addproduct",
		`{"name":"Shirt","category":"men","new_price":"50","old_price":"80.5"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"name":"Shirt"}`, rec.Body.String())
	assert.EqualValues(t, 50, catalog.added.NewPrice)
	assert.EqualValues(t, 80.5, catalog.added.OldPrice)
}

func TestAddProductRejectsBadPrices(t *testing.T) {
	catalog := &stubCatalog{}
	c := NewProductController(catalog)

	rec := serve(c.Add, jsonReq(http.MethodPost, "/addproduct",
		`{"name":"Shirt","category":"men","new_price":"cheap"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = serve(c.Add, jsonReq(http.MethodPost, "/addproduct",
		`{"name":"Shirt","category":"men","new_price":"-5"}`))
	assert.JSONEq(t, `{"success":false,"errors":{"new_price":"The new_price must be at least 0."}}`, rec.Body.String())
	assert.Empty(t, catalog.added.Name)
}

func TestAddProductStorageFailure(t *testing.T) {
	c := NewProductController(&stubCatalog{err: errBoom})

	rec := serve(c.Add, jsonReq(http.MethodPost, "/addproduct", `{"name":"Shirt","category":"men"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"errors":"Internal Server Error"}`, rec.Body.String())
}

func TestRemoveProduct(t *testing.T) {
	catalog := &stubCatalog{removed: &models.Product{ID: 4, Name: "Stored"}}
	c := NewProductController(catalog)

	rec := serve(c.Remove, jsonReq(http.MethodPost, "/removeproduct", `{"id":4,"name":"Given"}`))
	assert.JSONEq(t, `{"success":true,"name":"Stored"}`, rec.Body.String())

	catalog.removed = nil
	rec = serve(c.Remove, jsonReq(http.MethodPost, "/removeproduct", `{"id":"99","name":"Given"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"name":"Given"}`, rec.Body.String())
}

func TestListEndpointsReturnArrays(t *testing.T) {
	c := NewProductController(&stubCatalog{})

	for _, h := range []ctx.HandlerFunc{c.All, c.NewCollections, c.Popular} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	}

	c = NewProductController(&stubCatalog{list: []models.Product{{ID: 1, Name: "A", Category: "men", Available: true}}})
	rec := serve(c.All, httptest.NewRequest(http.MethodGet, "/allproducts", nil))

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	for _, field := range []string{"id", "name", "image", "category", "new_price", "old_price", "date", "available"} {
		assert.Contains(t, got[0], field)
	}
}

func TestSignupAndLoginResponses(t *testing.T) {
	c := NewAuthController(stubAccounts{})
	rec := serve(c.Signup, jsonReq(http.MethodPost, "/signup", `{"username":"a","email":"a@x.com","password":"p"}`))
	assert.JSONEq(t, `{"success":true,"token":"tok"}`, rec.Body.String())

	c = NewAuthController(stubAccounts{err: services.ErrEmailTaken})
	rec = serve(c.Signup, jsonReq(http.MethodPost, "/signup", `{"username":"a","email":"a@x.com","password":"p"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"errors":"Existing user found with same email address"}`, rec.Body.String())

	c = NewAuthController(stubAccounts{err: services.ErrPasswordTooLong})
	rec = serve(c.Signup, jsonReq(http.MethodPost, "/signup", `{"username":"a","email":"a@x.com","password":"`+strings.Repeat("x", 73)+`"}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"errors":"password must be at most 72 bytes"}`, rec.Body.String())

	c = NewAuthController(stubAccounts{err: services.ErrWrongEmail})
	rec = serve(c.Login, jsonReq(http.MethodPost, "/login", `{"email":"b@x.com","password":"p"}`))
	assert.JSONEq(t, `{"success":false,"errors":"wrong Email"}`, rec.Body.String())

	c = NewAuthController(stubAccounts{err: services.ErrWrongPassword})
	rec = serve(c.Login, jsonReq(http.MethodPost, "/login", `{"email":"a@x.com","password":"x"}`))
	assert.JSONEq(t, `{"success":false,"errors":"wrong Password"}`, rec.Body.String())

	c = NewAuthController(stubAccounts{err: errBoom})
	rec = serve(c.Login, jsonReq(http.MethodPost, "/login", `{"email":"a@x.com","password":"x"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCartEndpoints(t *testing.T) {
	carts := &stubCarts{}
	c := NewCartController(carts)

	rec := serve(c.Add, asUser(jsonReq(http.MethodPost, "/addtocart", `{"itemId":"7"}`), "u1"))
	assert.JSONEq(t, `{"success":true,"message":"Added"}`, rec.Body.String())
	assert.Equal(t, "u1", carts.user)
	assert.EqualValues(t, 7, carts.item)

	rec = serve(c.Remove, asUser(jsonReq(http.MethodPost, "/removefromcart", `{"itemId":7}`), "u1"))
	assert.JSONEq(t, `{"success":true,"message":"Removed"}`, rec.Body.String())

	rec = serve(c.Get, asUser(httptest.NewRequest(http.MethodPost, "/getcart", nil), "u1"))
	assert.JSONEq(t, `{"0":0,"1":0,"2":0,"3":2,"4":0}`, rec.Body.String())
}

func TestCartErrors(t *testing.T) {
	rec := serve(NewCartController(&stubCarts{}).Add,
		asUser(jsonReq(http.MethodPost, "/addtocart", `{}`), "u1"))
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = serve(NewCartController(&stubCarts{err: services.ErrUnknownItem}).Add,
		asUser(jsonReq(http.MethodPost, "/addtocart", `{"itemId":999}`), "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"errors":"no product found with the given itemId"}`, rec.Body.String())

	rec = serve(NewCartController(&stubCarts{err: repositories.ErrUserNotFound}).Get,
		asUser(httptest.NewRequest(http.MethodPost, "/getcart", nil), "gone"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(NewCartController(&stubCarts{err: errBoom}).Remove,
		asUser(jsonReq(http.MethodPost, "/removefromcart", `{"itemId":1}`), "u1"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func multipartReq(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Host = "shop.example:4000"
	return req
}

func TestUpload(t *testing.T) {
	up := &stubUploader{thumb: true}
	c := NewUploadController(up)

	rec := serve(c.Upload, multipartReq(t, "product", "a.png", "pixels"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": 1,
		"image_url": "http://shop.example:4000/images/product_1.png",
		"thumbnail_url": "http://shop.example:4000/images/thumbs/product_1.jpg"
	}`, rec.Body.String())
	assert.Equal(t, "pixels", up.body)
}

func TestUploadRejectsMissingField(t *testing.T) {
	c := NewUploadController(&stubUploader{})

	rec := serve(c.Upload, multipartReq(t, "other", "a.png", "pixels"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = serve(c.Upload, jsonReq(http.MethodPost, "/upload", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadStorageFailure(t *testing.T) {
	c := NewUploadController(&stubUploader{err: errBoom})

	rec := serve(c.Upload, multipartReq(t, "product", "a.png", "pixels"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHome(t *testing.T) {
	rec := serve(Home, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Storefront API is now running", rec.Body.String())
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/blackshot-store/internal/api/middleware"
	"github.com/example/blackshot-store/internal/auth"
	"github.com/example/blackshot-store/internal/domain/banner"
	"github.com/example/blackshot-store/internal/domain/cart"
	"github.com/example/blackshot-store/internal/domain/category"
	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/domain/order"
	"github.com/example/blackshot-store/internal/domain/product"
	"github.com/example/blackshot-store/internal/domain/review"
	"github.com/example/blackshot-store/internal/domain/settings"
	"github.com/example/blackshot-store/internal/domain/ticket"
	"github.com/example/blackshot-store/internal/domain/user"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/media"
	"github.com/example/blackshot-store/internal/session"
)

type testServer struct {
	handler  http.Handler
	store    *store.Store
	products *product.Service
	security *settings.Security
}

func newTestServer(t *testing.T, opts ...store.Option) *testServer {
	t.Helper()
	s := store.New(store.NewMemoryBackend(), opts...)
	ids := ident.NewGenerator(time.Now)
	passwords := auth.NewPasswords(false)
	images := media.NewConverter(media.Config{})

	products := product.NewService(s, ids)
	carts := cart.NewService(s, products)
	orders := order.NewService(s, carts, nil, ids)
	tickets := ticket.NewService(s, ids)
	users := user.NewService(s, passwords, ids)
	security := settings.NewSecurity(s)
	policies := settings.NewPolicies(s)
	upi := settings.NewUPI(s)

	router := NewRouter(RouterConfig{
		Handlers: NewHandlers(Services{
			Products: products,
			Reviews:  review.NewService(s, ids),
			Cart:     carts,
			Orders:   orders,
			Tickets:  tickets,
			Policies: policies,
			UPI:      upi,
			Images:   images,
		}),
		CategoryHandlers: NewCategoryHandlers(category.NewService(s, ids), banner.NewService(s, ids), images),
		AdminHandlers: NewAdminHandlers(AdminServices{
			Orders:   orders,
			Tickets:  tickets,
			Users:    users,
			Products: products,
			Policies: policies,
			UPI:      upi,
			Images:   images,
		}),
		AuthHandlers: NewAuthHandlers(
			session.NewAdminAuth(security, passwords, nil, false),
			session.NewCustomerAuth(users, s),
			auth.NewTokenService("test-secret-key", time.Hour),
		),
		Tokens: auth.NewTokenService("test-secret-key", time.Hour),
	})

	return &testServer{handler: router, store: s, products: products, security: security}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doMultipart(t *testing.T, path, token string, fields map[string]string, fileField string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "upload.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": settings.DefaultAdminPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[AuthResponse](t, rec).Token
}

func (ts *testServer) addProduct(t *testing.T, name string, price float64) product.Product {
	t.Helper()
	p, err := ts.products.Add(context.Background(), product.Product{Name: name, Price: price, Category: "T-Shirts"})
	require.NoError(t, err)
	return p
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// ============================================
// Catalog
// ============================================

func TestRouter_ProductsAndCategoryFilter(t *testing.T) {
	ts := newTestServer(t)
	tee := ts.addProduct(t, "Oversized Tee", 799)
	_, err := ts.products.Add(context.Background(), product.Product{Name: "Cargo", Price: 1499, Category: "Pants"})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/products?category=t-shirts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeBody[[]product.Product](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, tee.ID, products[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/products/"+tee.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Oversized Tee", decodeBody[product.Product](t, rec).Name)
}

func TestRouter_ProductNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/products/404", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdminRoutesNeedAdmin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/products", "", map[string]any{"name": "x", "price": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminCreatesProduct(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/products", token, map[string]any{
		"name": "Hoodie", "price": 1999, "category": "Hoodies",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[product.Product](t, rec)
	assert.False(t, created.ID.IsZero())
	assert.NotEmpty(t, created.Image)

	rec = ts.do(t, http.MethodPost, "/api/admin/products", token, map[string]any{"name": "Free", "price": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdminCreatesProductWithUpload(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	rec := ts.doMultipart(t, "/api/admin/products", token, map[string]string{
		"name":           "Graphic Tee",
		"price":          "899",
		"category":       "T-Shirts",
		"specifications": "Cotton, Oversized",
	}, "image", pngBytes(t, 40, 20))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody[product.Product](t, rec)
	assert.True(t, strings.HasPrefix(created.Image, "data:image/jpeg;base64,"))
	assert.Equal(t, []string{"Cotton", "Oversized"}, created.Specifications)
}

func TestRouter_UnreadableUpload(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	rec := ts.doMultipart(t, "/api/admin/products", token, map[string]string{
		"name": "Broken", "price": "100",
	}, "image", []byte("not an image"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, ts.mustProducts(t))
}

func TestRouter_QuotaExceededReturnsHint(t *testing.T) {
	ts := newTestServer(t, store.WithQuota(300))
	token := ts.adminToken(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/products", token, map[string]any{
		"name": "Long", "price": 10, "description": strings.Repeat("x", 500),
	})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Contains(t, body["error"], "Storage is full")
}

func TestRouter_DuplicateCategory(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/categories", token, map[string]string{"name": "Hoodies"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/categories", token, map[string]string{"name": "hoodies"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_BannerSectionValidated(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/banners", token, map[string]string{
		"image": "https://img.example/banner.jpg", "section": "footer",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/banners", token, map[string]string{
		"image": "https://img.example/banner.jpg", "section": "hero",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/banners?section=hero", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	banners := decodeBody[[]banner.Banner](t, rec)
	require.Len(t, banners, 1)
	assert.Equal(t, "#", banners[0].Link)
}

// ============================================
// Cart and checkout
// ============================================

func TestRouter_CartAndGuestCheckout(t *testing.T) {
	ts := newTestServer(t)
	tee := ts.addProduct(t, "Oversized Tee", 799)

	rec := ts.do(t, http.MethodPost, "/api/cart/items", "", map[string]any{"productId": tee.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := decodeBody[cartResponse](t, rec)
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, 1598.0, c.Total)

	rec = ts.do(t, http.MethodPost, "/api/checkout", "", map[string]any{
		"shippingInfo":  map[string]string{"fullname": "Asha", "phone": "9999999999", "address": "MG Road"},
		"paymentMethod": "upi",
		"utrNumber":     "123456789012",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decodeBody[order.Order](t, rec)
	assert.Equal(t, ident.Guest, placed.UserID)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, 1598.0, placed.Total)

	rec = ts.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, 0, decodeBody[cartResponse](t, rec).Count)
}

func TestRouter_CartSummary(t *testing.T) {
	ts := newTestServer(t)
	tee := ts.addProduct(t, "Oversized Tee", 799)
	hat := ts.addProduct(t, "Cap", 250)

	ts.do(t, http.MethodPost, "/api/cart/items", "", map[string]any{"productId": tee.ID, "quantity": 2})
	ts.do(t, http.MethodPost, "/api/cart/items", "", map[string]any{"productId": hat.ID})

	rec := ts.do(t, http.MethodGet, "/api/cart/summary", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[cartSummary](t, rec)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 1848.0, summary.Total)
}

func (ts *testServer) guestOrder(t *testing.T) order.Order {
	t.Helper()
	tee := ts.addProduct(t, "Oversized Tee", 799)
	ts.do(t, http.MethodPost, "/api/cart/items", "", map[string]any{"productId": tee.ID, "quantity": 1})
	rec := ts.do(t, http.MethodPost, "/api/checkout", "", map[string]any{
		"shippingInfo": map[string]string{
			"fullname": "Bob", "email": "bob@example.com", "phone": "555", "address": "1 Secret St",
		},
		"screenshot": "data:image/jpeg;base64,AAAA",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[order.Order](t, rec)
}

func TestRouter_GuestOrderAnonymousSeesTrackingOnly(t *testing.T) {
	ts := newTestServer(t)
	placed := ts.guestOrder(t)

	rec := ts.do(t, http.MethodGet, "/api/orders/"+placed.OrderID.String(), "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, placed.OrderID.String(), body["orderId"])
	assert.Equal(t, string(order.StatusPending), body["status"])
	assert.NotContains(t, body, "shippingInfo")
	assert.NotContains(t, body, "screenshot")
	assert.NotContains(t, rec.Body.String(), "Secret St")
}

func TestRouter_GuestOrderWithContact(t *testing.T) {
	ts := newTestServer(t)
	placed := ts.guestOrder(t)
	path := "/api/orders/" + placed.OrderID.String()

	rec := ts.do(t, http.MethodGet, path+"?contact=BOB@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1 Secret St", decodeBody[order.Order](t, rec).ShippingInfo.Address)

	rec = ts.do(t, http.MethodGet, path+"?contact=555", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "555", decodeBody[order.Order](t, rec).ShippingInfo.Phone)

	rec = ts.do(t, http.MethodGet, path+"?contact=eve@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "shippingInfo")
}

func TestRouter_AdminSeesFullOrder(t *testing.T) {
	ts := newTestServer(t)
	placed := ts.guestOrder(t)

	rec := ts.do(t, http.MethodGet, "/api/orders/"+placed.OrderID.String(), ts.adminToken(t), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob@example.com", decodeBody[order.Order](t, rec).ShippingInfo.Email)
}

func TestRouter_CustomerOrderHiddenFromOthers(t *testing.T) {
	ts := newTestServer(t)
	tee := ts.addProduct(t, "Oversized Tee", 799)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	owner := decodeBody[AuthResponse](t, rec).Token
	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	other := decodeBody[AuthResponse](t, rec).Token

	ts.do(t, http.MethodPost, "/api/cart/items", owner, map[string]any{"productId": tee.ID, "quantity": 1})
	rec = ts.do(t, http.MethodPost, "/api/checkout", owner, map[string]any{
		"shippingInfo": map[string]string{"fullname": "Asha", "phone": "9999999999", "address": "MG Road"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/api/orders/" + decodeBody[order.Order](t, rec).OrderID.String()

	rec = ts.do(t, http.MethodGet, path, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MG Road", decodeBody[order.Order](t, rec).ShippingInfo.Address)

	rec = ts.do(t, http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, path+"?contact=9999999999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CheckoutEmptyCart(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/checkout", "", map[string]any{
		"shippingInfo": map[string]string{"fullname": "Asha", "phone": "1", "address": "x"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AddUnknownProductToCart(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/cart/items", "", map[string]any{"productId": "999", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ============================================
// Customer accounts
// ============================================

func TestRouter_RegisterLoginAndOrders(t *testing.T) {
	ts := newTestServer(t)
	tee := ts.addProduct(t, "Oversized Tee", 799)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "asha@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[AuthResponse](t, rec)
	require.NotNil(t, resp.Session.User)
	assert.Empty(t, resp.Session.User.Password)
	token := resp.Token

	rec = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asha@example.com", decodeBody[map[string]user.User](t, rec)["user"].Email)

	ts.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"productId": tee.ID, "quantity": 1})
	rec = ts.do(t, http.MethodPost, "/api/checkout", token, map[string]any{
		"shippingInfo": map[string]string{"fullname": "Asha", "phone": "9999999999", "address": "MG Road"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decodeBody[order.Order](t, rec)
	assert.Equal(t, resp.Session.User.ID, placed.UserID)
	assert.Equal(t, "asha@example.com", placed.ShippingInfo.Email)

	rec = ts.do(t, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]order.Order](t, rec), 1)

	rec = ts.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_MeRequiresOwnSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "alice@example.com")
}

func TestRouter_ShortCustomerPasswordAccepted(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "abc"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Ravi", Email: "ravi@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_TicketFromCustomer(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decodeBody[AuthResponse](t, rec).Token

	rec = ts.do(t, http.MethodPost, "/api/tickets", token, ticket.Request{Subject: "Size", Message: "Do you have XL?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[ticket.Ticket](t, rec)
	assert.Equal(t, "ravi@example.com", created.UserEmail)

	rec = ts.do(t, http.MethodGet, "/api/tickets", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ticket.Ticket](t, rec), 1)
}

// ============================================
// Admin
// ============================================

func TestRouter_AdminWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "guess"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminTwoFactorLogin(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.security.EnableTwoFactor(context.Background(), "JBSWY3DPEHPK3PXP", []string{"BACKUP01"}))

	rec := ts.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": settings.DefaultAdminPassword})
	require.Equal(t, http.StatusAccepted, rec.Code)
	pending := decodeBody[AuthResponse](t, rec)
	assert.True(t, pending.TwoFactorRequired)

	rec = ts.do(t, http.MethodGet, "/api/admin/dashboard", pending.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/2fa/verify", pending.Token, map[string]string{"code": "12ab"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/2fa/verify", pending.Token, map[string]string{"code": "123456"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decodeBody[AuthResponse](t, rec)
	assert.True(t, done.Session.IsAdmin())

	rec = ts.do(t, http.MethodGet, "/api/admin/dashboard", done.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_VerifyWithoutPendingLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/2fa/verify", "", map[string]string{"code": "123456"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminOrderReview(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)
	tee := ts.addProduct(t, "Oversized Tee", 799)

	ts.do(t, http.MethodPost, "/api/cart/items", "", map[string]any{"productId": tee.ID, "quantity": 1})
	rec := ts.do(t, http.MethodPost, "/api/checkout", "", map[string]any{
		"shippingInfo": map[string]string{"fullname": "Asha", "phone": "1", "address": "x"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	placed := decodeBody[order.Order](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/admin/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[DashboardResponse](t, rec).PendingOrders)

	path := "/api/admin/orders/" + placed.OrderID.String()
	rec = ts.do(t, http.MethodPost, path+"/approve", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.StatusApproved, decodeBody[order.Order](t, rec).Status)

	rec = ts.do(t, http.MethodPost, path+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPut, path+"/status", token, map[string]string{"status": "Out for delivery"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.Status("out for delivery"), decodeBody[order.Order](t, rec).Status)

	rec = ts.do(t, http.MethodGet, "/api/admin/orders/history?status=all", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]order.Order](t, rec), 1)

	rec = ts.do(t, http.MethodPost, "/api/admin/orders/missing/approve", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdminChangesPassword(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/password", token, map[string]string{
		"currentPassword": settings.DefaultAdminPassword, "newPassword": "n3w-pass", "confirmPassword": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/password", token, map[string]string{
		"currentPassword": settings.DefaultAdminPassword, "newPassword": "n3w-pass", "confirmPassword": "n3w-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": "n3w-pass"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func cookieNamed(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestRouter_SessionCookieIsAccepted(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AdminSessionCookie, Value: token})
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminAndCustomerCookiesCoexist(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	customer := cookieNamed(t, rec, middleware.SessionCookie)

	rec = ts.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"password": settings.DefaultAdminPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	admin := cookieNamed(t, rec, middleware.AdminSessionCookie)
	assert.Equal(t, middleware.AdminPath, admin.Path)
	assert.True(t, admin.Expires.IsZero())

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(customer)
		req.AddCookie(admin)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		return rec
	}

	rec = send("/api/auth/me")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asha@example.com", decodeBody[map[string]user.User](t, rec)["user"].Email)

	assert.Equal(t, http.StatusOK, send("/api/admin/users").Code)
}

func (ts *testServer) mustProducts(t *testing.T) []product.Product {
	t.Helper()
	products, err := ts.products.List(context.Background())
	require.NoError(t, err)
	return products
}

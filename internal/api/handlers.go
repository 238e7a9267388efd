package api

import (
	"net/http"
	"strings"

	"github.com/example/blackshot-store/internal/domain/cart"
	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/domain/order"
	"github.com/example/blackshot-store/internal/domain/product"
	"github.com/example/blackshot-store/internal/domain/review"
	"github.com/example/blackshot-store/internal/domain/settings"
	"github.com/example/blackshot-store/internal/domain/ticket"
	"github.com/example/blackshot-store/internal/logging"
	"github.com/example/blackshot-store/internal/media"
)

// Services are the repositories the storefront and admin handlers work on
type Services struct {
	Products *product.Service
	Reviews  *review.Service
	Cart     *cart.Service
	Orders   *order.Service
	Tickets  *ticket.Service
	Policies *settings.Policies
	UPI      *settings.UPI
	Images   *media.Converter
}

type Handlers struct {
	products *product.Service
	reviews  *review.Service
	cart     *cart.Service
	orders   *order.Service
	tickets  *ticket.Service
	policies *settings.Policies
	upi      *settings.UPI
	images   *media.Converter
}

func NewHandlers(svc Services) *Handlers {
	images := svc.Images
	if images == nil {
		images = media.NewConverter(media.Config{})
	}
	return &Handlers{
		products: svc.Products,
		reviews:  svc.Reviews,
		cart:     svc.Cart,
		orders:   svc.Orders,
		tickets:  svc.Tickets,
		policies: svc.Policies,
		upi:      svc.UPI,
		images:   images,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []product.Product
		err      error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		products, err = h.products.ListByCategory(r.Context(), category)
	} else {
		products, err = h.products.List(r.Context())
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, ok, err := h.products.Get(r.Context(), ident.Parse(r.PathValue("id")))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if !ok {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// CreateProduct accepts JSON or a multipart form with an optional image file
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if isMultipart(r) {
		patch, ok := h.productForm(w, r)
		if !ok {
			return
		}
		patch.Apply(&p)
	} else if !decodeJSON(w, r, &p) {
		return
	}

	created, err := h.products.Add(r.Context(), p)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch product.Patch
	if isMultipart(r) {
		var ok bool
		if patch, ok = h.productForm(w, r); !ok {
			return
		}
	} else if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.products.Update(r.Context(), ident.Parse(r.PathValue("id")), patch)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), ident.Parse(r.PathValue("id"))); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// productForm reads the admin product form. Only submitted fields are set.
func (h *Handlers) productForm(w http.ResponseWriter, r *http.Request) (product.Patch, bool) {
	var patch product.Patch
	if err := parseForm(r); err != nil {
		respondJSONError(w, "Invalid form", http.StatusBadRequest)
		return patch, false
	}

	str := func(field string) *string {
		if _, ok := r.Form[field]; !ok {
			return nil
		}
		v := strings.TrimSpace(r.FormValue(field))
		return &v
	}
	num := func(field string) (*float64, bool) {
		if _, ok := r.Form[field]; !ok {
			return nil, true
		}
		f, err := formFloat(r, field)
		if err != nil {
			respondJSONError(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		return &f, true
	}

	patch.Name = str("name")
	patch.Description = str("description")
	patch.Category = str("category")
	var ok bool
	if patch.Price, ok = num("price"); !ok {
		return patch, false
	}
	if patch.OldPrice, ok = num("oldPrice"); !ok {
		return patch, false
	}
	if specs := str("specifications"); specs != nil {
		parsed := product.ParseSpecifications(*specs)
		patch.Specifications = &parsed
	}

	image, err := uploadedImage(r, h.images, "image")
	if err != nil {
		respondErr(w, r, err)
		return patch, false
	}
	if image == "" {
		image = r.FormValue("imageUrl")
	}
	if image != "" {
		patch.Image = &image
	}
	return patch, true
}

// Review Handlers

func (h *Handlers) GetReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListForProduct(r.Context(), ident.Parse(r.PathValue("id")))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) AddReview(w http.ResponseWriter, r *http.Request) {
	var rev review.Review
	if !decodeJSON(w, r, &rev) {
		return
	}
	rev.ProductID = ident.Parse(r.PathValue("id"))
	if u, ok := currentSession(r).Customer(); ok && strings.TrimSpace(rev.Name) == "" {
		rev.Name = u.Name
	}

	created, err := h.reviews.Add(r.Context(), rev)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Cart Handlers

type cartResponse struct {
	Items []cart.Item `json:"items"`
	Count int         `json:"count"`
	Total float64     `json:"total"`
}

func respondCart(w http.ResponseWriter, status int, items []cart.Item) {
	if items == nil {
		items = []cart.Item{}
	}
	respondJSON(w, status, cartResponse{Items: items, Count: cart.Quantity(items), Total: cart.Subtotal(items)})
}

type cartSummary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// GetCartSummary returns the badge count and total without the lines
func (h *Handlers) GetCartSummary(w http.ResponseWriter, r *http.Request) {
	count, err := h.cart.Count(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	total, err := h.cart.Total(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cartSummary{Count: count, Total: total})
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondCart(w, http.StatusOK, items)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID ident.ID `json:"productId"`
		Quantity  int      `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	items, err := h.cart.Add(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondCart(w, http.StatusOK, items)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	items, err := h.cart.UpdateQuantity(r.Context(), ident.Parse(r.PathValue("productId")), req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondCart(w, http.StatusOK, items)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.Remove(r.Context(), ident.Parse(r.PathValue("productId")))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondCart(w, http.StatusOK, items)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		respondErr(w, r, err)
		return
	}
	respondCart(w, http.StatusOK, nil)
}

// Order Handlers

// Checkout places an order from the cart. The payment screenshot may be sent as
// a multipart file.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var req order.PlaceOrder
	if isMultipart(r) {
		if err := parseForm(r); err != nil {
			respondJSONError(w, "Invalid form", http.StatusBadRequest)
			return
		}
		req.ShippingInfo = order.ShippingInfo{
			FullName: strings.TrimSpace(r.FormValue("fullname")),
			Email:    strings.TrimSpace(r.FormValue("email")),
			Phone:    strings.TrimSpace(r.FormValue("phone")),
			Address:  strings.TrimSpace(r.FormValue("address")),
			City:     strings.TrimSpace(r.FormValue("city")),
			State:    strings.TrimSpace(r.FormValue("state")),
			Pincode:  strings.TrimSpace(r.FormValue("pincode")),
		}
		req.PaymentMethod = r.FormValue("paymentMethod")
		req.UTRNumber = r.FormValue("utrNumber")
		screenshot, err := uploadedImage(r, h.images, "screenshot")
		if err != nil {
			respondErr(w, r, err)
			return
		}
		req.Screenshot = screenshot
	} else if !decodeJSON(w, r, &req) {
		return
	}

	sess := currentSession(r)
	if u, ok := sess.Customer(); ok && req.ShippingInfo.Email == "" {
		req.ShippingInfo.Email = u.Email
	}

	placed, err := h.orders.Checkout(r.Context(), sess.UserID(), req)
	if err != nil && placed.OrderID.IsZero() {
		respondErr(w, r, err)
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Warn("order placed but cart not cleared", "order_id", placed.OrderID, "error", err)
	}
	respondJSON(w, http.StatusCreated, placed)
}

// GetMyOrders lists the signed-in customer's orders, newest first
func (h *Handlers) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), currentSession(r).UserID())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetOrder looks an order up by its id, which doubles as the tracking number.
// The full order goes to its customer and to admins. A guest order is shown in
// full when ?contact= matches its shipping email or phone and as tracking
// status otherwise. Other customers' orders are not found.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, ok, err := h.orders.Get(r.Context(), ident.Parse(r.PathValue("id")))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	sess := currentSession(r)
	u, isCustomer := sess.Customer()
	switch {
	case !ok:
		respondJSONError(w, "Order not found", http.StatusNotFound)
	case sess.IsAdmin(), isCustomer && u.ID == o.UserID:
		respondJSON(w, http.StatusOK, o)
	case !o.IsGuest():
		respondJSONError(w, "Order not found", http.StatusNotFound)
	case o.MatchesContact(r.URL.Query().Get("contact")):
		respondJSON(w, http.StatusOK, o)
	default:
		respondJSON(w, http.StatusOK, o.Tracking())
	}
}

// Ticket Handlers

func (h *Handlers) OpenTicket(w http.ResponseWriter, r *http.Request) {
	var req ticket.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	var by *ticket.Submitter
	if u, ok := currentSession(r).Customer(); ok {
		by = &ticket.Submitter{ID: u.ID, Name: u.Name, Email: u.Email}
	}

	created, err := h.tickets.Open(r.Context(), by, req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *Handlers) GetMyTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.tickets.ListByUser(r.Context(), currentSession(r).UserID())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tickets)
}

// Settings Handlers

func (h *Handlers) GetPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policies.Get(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, policies)
}

func (h *Handlers) GetUPI(w http.ResponseWriter, r *http.Request) {
	upi, err := h.upi.Get(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, upi)
}

package api

import (
	"net/http"
	"strings"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/domain/order"
	"github.com/example/blackshot-store/internal/domain/product"
	"github.com/example/blackshot-store/internal/domain/settings"
	"github.com/example/blackshot-store/internal/domain/ticket"
	"github.com/example/blackshot-store/internal/domain/user"
	"github.com/example/blackshot-store/internal/media"
)

// AdminHandlers serves the admin panel: order review, tickets, users and shop
// settings.
type AdminHandlers struct {
	orders   *order.Service
	tickets  *ticket.Service
	users    *user.Service
	products *product.Service
	policies *settings.Policies
	upi      *settings.UPI
	images   *media.Converter
}

type AdminServices struct {
	Orders   *order.Service
	Tickets  *ticket.Service
	Users    *user.Service
	Products *product.Service
	Policies *settings.Policies
	UPI      *settings.UPI
	Images   *media.Converter
}

func NewAdminHandlers(svc AdminServices) *AdminHandlers {
	images := svc.Images
	if images == nil {
		images = media.NewConverter(media.Config{})
	}
	return &AdminHandlers{
		orders:   svc.Orders,
		tickets:  svc.Tickets,
		users:    svc.Users,
		products: svc.Products,
		policies: svc.Policies,
		upi:      svc.UPI,
		images:   images,
	}
}

// DashboardResponse holds the counters on the admin landing page
type DashboardResponse struct {
	PendingOrders int `json:"pendingOrders"`
	OpenTickets   int `json:"openTickets"`
	Products      int `json:"products"`
	Users         int `json:"users"`
}

func (h *AdminHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pending, err := h.orders.PendingCount(ctx)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	open, err := h.tickets.OpenCount(ctx)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	products, err := h.products.List(ctx)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	users, err := h.users.List(ctx)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, DashboardResponse{
		PendingOrders: pending,
		OpenTickets:   open,
		Products:      len(products),
		Users:         len(users),
	})
}

// Order review

// ListOrders returns orders with ?status= (default pending), or every order
// with status=all.
func (h *AdminHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	var (
		orders []order.Order
		err    error
	)
	switch status {
	case "all":
		orders, err = h.orders.List(r.Context())
	case "":
		orders, err = h.orders.ListByStatus(r.Context(), order.StatusPending)
	default:
		orders, err = h.orders.ListByStatus(r.Context(), order.Status(status))
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// OrderHistory lists processed orders, newest first, filtered by ?status=
func (h *AdminHandlers) OrderHistory(w http.ResponseWriter, r *http.Request) {
	status := order.Status(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	orders, err := h.orders.History(r.Context(), status)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *AdminHandlers) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Approve(r.Context(), ident.Parse(r.PathValue("id")))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *AdminHandlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), ident.Parse(r.PathValue("id")))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// UpdateOrderStatus accepts a recognized status or any custom label
func (h *AdminHandlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	status, custom := order.ParseStatus(req.Status)
	o, err := h.orders.UpdateStatus(r.Context(), ident.Parse(r.PathValue("id")), status, custom)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Tickets

func (h *AdminHandlers) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.tickets.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tickets)
}

func (h *AdminHandlers) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	if err := h.tickets.Resolve(r.Context(), ident.Parse(r.PathValue("id"))); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Users

func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	public := make([]user.User, len(users))
	for i, u := range users {
		public[i] = u.Public()
	}
	respondJSON(w, http.StatusOK, public)
}

// Settings

func (h *AdminHandlers) SavePolicies(w http.ResponseWriter, r *http.Request) {
	var text settings.PolicyText
	if !decodeJSON(w, r, &text) {
		return
	}
	if err := h.policies.Save(r.Context(), text); err != nil {
		respondErr(w, r, err)
		return
	}
	saved, err := h.policies.Get(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// SaveUPI stores the UPI id and, when uploaded, a new QR code image
func (h *AdminHandlers) SaveUPI(w http.ResponseWriter, r *http.Request) {
	var req settings.UPISettings
	if isMultipart(r) {
		if err := parseForm(r); err != nil {
			respondJSONError(w, "Invalid form", http.StatusBadRequest)
			return
		}
		req.UPIID = r.FormValue("upiId")
		qr, err := uploadedImage(r, h.images, "qrCode")
		if err != nil {
			respondErr(w, r, err)
			return
		}
		req.QRCode = qr
	} else if !decodeJSON(w, r, &req) {
		return
	}

	saved, err := h.upi.Save(r.Context(), req.UPIID, req.QRCode)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

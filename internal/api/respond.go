package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/blackshot-store/internal/api/middleware"
	"github.com/example/blackshot-store/internal/auth"
	"github.com/example/blackshot-store/internal/domain/banner"
	"github.com/example/blackshot-store/internal/domain/cart"
	"github.com/example/blackshot-store/internal/domain/category"
	"github.com/example/blackshot-store/internal/domain/order"
	"github.com/example/blackshot-store/internal/domain/product"
	"github.com/example/blackshot-store/internal/domain/review"
	"github.com/example/blackshot-store/internal/domain/settings"
	"github.com/example/blackshot-store/internal/domain/ticket"
	"github.com/example/blackshot-store/internal/domain/user"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/logging"
	"github.com/example/blackshot-store/internal/media"
	"github.com/example/blackshot-store/internal/session"
)

const maxFormMemory = 32 << 20

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondErr maps domain and storage errors to a status code. Storage failures
// carry a hint the shopper or admin can act on.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var writeErr *store.WriteError
	switch {
	case errors.As(err, &writeErr):
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, store.ErrQuotaExceeded):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, store.ErrSerialization):
			status = http.StatusUnprocessableEntity
		}
		logging.FromContext(r.Context()).Error("store write failed", "key", writeErr.Key, "error", err)
		respondJSONError(w, writeErr.Hint(), status)
		return
	case errors.Is(err, media.ErrImageTooLarge):
		respondJSONError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, media.ErrImageProcessing):
		respondJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if status, ok := statusFor(err); ok {
		respondJSONError(w, err.Error(), status)
		return
	}

	logging.FromContext(r.Context()).Error("request failed", "error", err)
	respondJSONError(w, "internal server error", http.StatusInternalServerError)
}

func statusFor(err error) (int, bool) {
	for _, group := range []struct {
		status int
		errs   []error
	}{
		{http.StatusNotFound, []error{
			product.ErrProductNotFound, cart.ErrProductNotFound, category.ErrCategoryNotFound,
			order.ErrOrderNotFound, ticket.ErrTicketNotFound, user.ErrUserNotFound,
		}},
		{http.StatusConflict, []error{
			category.ErrDuplicateName, user.ErrEmailTaken, order.ErrInvalidTransition,
		}},
		{http.StatusUnauthorized, []error{
			user.ErrInvalidCredentials, session.ErrWrongPassword, session.ErrInvalidCode,
			session.ErrNoPendingLogin,
		}},
		{http.StatusBadRequest, []error{
			product.ErrInvalidName, product.ErrInvalidPrice,
			cart.ErrInvalidProduct, cart.ErrInvalidQuantity,
			category.ErrInvalidName,
			banner.ErrInvalidSection, banner.ErrImageRequired,
			review.ErrInvalidRating, review.ErrInvalidProduct, review.ErrEmptyComment,
			ticket.ErrSubjectRequired, ticket.ErrMessageRequired,
			user.ErrInvalidName, user.ErrInvalidEmail, user.ErrInvalidPassword, auth.ErrPasswordTooShort,
			order.ErrEmptyOrder, order.ErrInvalidQuantity, order.ErrInvalidStatus, order.ErrShippingRequired,
			settings.ErrUPIIDRequired, settings.ErrQRCodeRequired,
			session.ErrPasswordMismatch, session.ErrTwoFactorNotEnabled,
		}},
	} {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status, true
			}
		}
	}
	return 0, false
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseForm reads a multipart or urlencoded body
func parseForm(r *http.Request) error {
	if isMultipart(r) {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func formFloat(r *http.Request, field string) (float64, error) {
	value := strings.TrimSpace(r.FormValue(field))
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return f, nil
}

// uploadedImage converts the file in field to a data URL. An absent file
// returns "".
func uploadedImage(r *http.Request, images *media.Converter, field string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", media.ErrImageProcessing, err)
	}
	defer file.Close()
	return images.Convert(r.Context(), file)
}

func currentSession(r *http.Request) *session.Session {
	sess, _ := middleware.SessionFromContext(r.Context())
	return sess
}

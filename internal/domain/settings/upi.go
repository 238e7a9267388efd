package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/example/blackshot-store/internal/infrastructure/store"
)

var (
	ErrUPIIDRequired  = errors.New("UPI id is required")
	ErrQRCodeRequired = errors.New("please upload a QR code image")
)

// UPISettings are the payment details shown at checkout
type UPISettings struct {
	UPIID  string `json:"upiId"`
	QRCode string `json:"qrCode"`
}

type UPI struct {
	store *store.Store
}

func NewUPI(s *store.Store) *UPI {
	return &UPI{store: s}
}

// Get returns the saved details; missing values are empty strings
func (u *UPI) Get(ctx context.Context) (UPISettings, error) {
	id, _, err := u.store.ReadString(ctx, store.KeyUPIID)
	if err != nil {
		return UPISettings{}, err
	}
	qr, _, err := u.store.ReadString(ctx, store.KeyUPIQRCode)
	if err != nil {
		return UPISettings{}, err
	}
	return UPISettings{UPIID: id, QRCode: qr}, nil
}

// Save stores the UPI id and QR image. An empty qrCode keeps the saved image; a
// QR image is required when none is saved yet.
func (u *UPI) Save(ctx context.Context, upiID, qrCode string) (UPISettings, error) {
	upiID = strings.TrimSpace(upiID)
	if upiID == "" {
		return UPISettings{}, ErrUPIIDRequired
	}
	if qrCode == "" {
		current, err := u.Get(ctx)
		if err != nil {
			return UPISettings{}, err
		}
		qrCode = current.QRCode
	}
	if qrCode == "" {
		return UPISettings{}, ErrQRCodeRequired
	}

	if err := u.store.WriteString(ctx, store.KeyUPIID, upiID); err != nil {
		return UPISettings{}, err
	}
	if err := u.store.WriteString(ctx, store.KeyUPIQRCode, qrCode); err != nil {
		return UPISettings{}, err
	}
	return UPISettings{UPIID: upiID, QRCode: qrCode}, nil
}

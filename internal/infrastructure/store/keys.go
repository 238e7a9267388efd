package store

// Storage keys. They match the keys used by existing saved profiles and must not change.
const (
	KeyProducts    = "blackshot_products"
	KeyReviews     = "blackshot_reviews"
	KeyCart        = "blackshot_cart"
	KeyOrders      = "pending_orders" // holds every order regardless of status
	KeyUsers       = "blackshot_users"
	KeyCurrentUser = "blackshot_current_user"
	KeyCategories  = "blackshot_categories"
	KeyBanners     = "blackshot_banners"
	KeyTickets     = "blackshot_tickets"
	KeyPolicies    = "blackshot_policies"

	// Scalar settings are stored as raw strings, not JSON.
	KeyAdminPassword    = "admin_password"
	KeyTwoFactorEnabled = "admin_2fa_enabled"
	KeyTwoFactorSecret  = "admin_2fa_secret"
	KeyUPIID            = "upi_id"
	KeyUPIQRCode        = "upi_qr_code"
	KeyTwoFactorBackup  = "admin_2fa_backup_codes" // JSON array
)

// rawStringKeys are written with WriteString and exported verbatim.
var rawStringKeys = map[string]bool{
	KeyAdminPassword:    true,
	KeyTwoFactorEnabled: true,
	KeyTwoFactorSecret:  true,
	KeyUPIID:            true,
	KeyUPIQRCode:        true,
}

// IsRawStringKey reports whether key holds an unencoded string value.
func IsRawStringKey(key string) bool {
	return rawStringKeys[key]
}

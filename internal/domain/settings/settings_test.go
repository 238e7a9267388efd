package settings

import (
	"context"
	"testing"

	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*store.Store, *mocks.MockBackend) {
	backend := mocks.NewMockBackend()
	return store.New(backend), backend
}

// ============================================
// Security Tests
// ============================================

func TestSecurity_AdminPassword_Default(t *testing.T) {
	s, _ := newTestStore()

	password, err := NewSecurity(s).AdminPassword(context.Background())

	require.NoError(t, err)
	assert.Equal(t, DefaultAdminPassword, password)
}

func TestSecurity_SetAdminPassword_StoredRaw(t *testing.T) {
	s, backend := newTestStore()
	security := NewSecurity(s)
	ctx := context.Background()

	require.NoError(t, security.SetAdminPassword(ctx, "hunter22"))

	raw, _ := backend.Raw(store.KeyAdminPassword)
	assert.Equal(t, "hunter22", raw)
	password, err := security.AdminPassword(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hunter22", password)
}

func TestSecurity_EnableDisableTwoFactor(t *testing.T) {
	s, backend := newTestStore()
	security := NewSecurity(s)
	ctx := context.Background()

	require.NoError(t, security.EnableTwoFactor(ctx, "JBSWY3DPEHPK3PXP", []string{"AAAA1111", "BBBB2222"}))

	enabled, err := security.TwoFactorEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
	flag, _ := backend.Raw(store.KeyTwoFactorEnabled)
	assert.Equal(t, "true", flag)
	codes, _ := backend.Raw(store.KeyTwoFactorBackup)
	assert.Equal(t, `["AAAA1111","BBBB2222"]`, codes)

	require.NoError(t, security.DisableTwoFactor(ctx))

	enabled, err = security.TwoFactorEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	secret, err := security.TwoFactorSecret(ctx)
	require.NoError(t, err)
	assert.Empty(t, secret)
	_, found := backend.Raw(store.KeyTwoFactorBackup)
	assert.False(t, found)
}

func TestSecurity_UseBackupCode_Consumed(t *testing.T) {
	s, _ := newTestStore()
	security := NewSecurity(s)
	ctx := context.Background()
	require.NoError(t, security.SaveBackupCodes(ctx, []string{"AAAA1111", "BBBB2222"}))

	ok, err := security.UseBackupCode(ctx, "AAAA1111", true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.UseBackupCode(ctx, "AAAA1111", true)
	require.NoError(t, err)
	assert.False(t, ok)

	codes, err := security.BackupCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBBB2222"}, codes)
}

func TestSecurity_UseBackupCode_Reusable(t *testing.T) {
	s, backend := newTestStore()
	security := NewSecurity(s)
	ctx := context.Background()
	require.NoError(t, security.SaveBackupCodes(ctx, []string{"AAAA1111"}))
	backend.SetCalls = nil

	for i := 0; i < 2; i++ {
		ok, err := security.UseBackupCode(ctx, "AAAA1111", false)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Empty(t, backend.SetCalls)
}

func TestSecurity_UseBackupCode_Empty(t *testing.T) {
	s, _ := newTestStore()

	ok, err := NewSecurity(s).UseBackupCode(context.Background(), "", true)

	require.NoError(t, err)
	assert.False(t, ok)
}

// ============================================
// UPI Tests
// ============================================

func TestUPI_SaveAndGet(t *testing.T) {
	s, backend := newTestStore()
	upi := NewUPI(s)
	ctx := context.Background()

	saved, err := upi.Save(ctx, " shop@upi ", "data:image/jpeg;base64,QR")
	require.NoError(t, err)
	assert.Equal(t, "shop@upi", saved.UPIID)

	raw, _ := backend.Raw(store.KeyUPIID)
	assert.Equal(t, "shop@upi", raw)

	got, err := upi.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestUPI_Save_KeepsExistingQRCode(t *testing.T) {
	s, _ := newTestStore()
	upi := NewUPI(s)
	ctx := context.Background()
	_, err := upi.Save(ctx, "shop@upi", "qr-1")
	require.NoError(t, err)

	saved, err := upi.Save(ctx, "store@upi", "")

	require.NoError(t, err)
	assert.Equal(t, "qr-1", saved.QRCode)
	assert.Equal(t, "store@upi", saved.UPIID)
}

func TestUPI_Save_RequiresQRCode(t *testing.T) {
	s, backend := newTestStore()

	_, err := NewUPI(s).Save(context.Background(), "shop@upi", "")

	assert.ErrorIs(t, err, ErrQRCodeRequired)
	assert.Empty(t, backend.SetCalls)
}

func TestUPI_Get_Empty(t *testing.T) {
	s, _ := newTestStore()

	got, err := NewUPI(s).Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, UPISettings{}, got)
}

// ============================================
// Policies Tests
// ============================================

func TestPolicies_Get_Defaults(t *testing.T) {
	s, backend := newTestStore()
	backend.Put(store.KeyPolicies, "null")

	text, err := NewPolicies(s).Get(context.Background())

	require.NoError(t, err)
	assert.Contains(t, text.Shipping, "Processing Time")
	assert.Contains(t, text.Refund, "Return Window")
}

func TestPolicies_SaveAndGet(t *testing.T) {
	s, backend := newTestStore()
	policies := NewPolicies(s)
	ctx := context.Background()

	require.NoError(t, policies.Save(ctx, PolicyText{Shipping: "<p>Fast</p>", Refund: "<p>None</p>"}))

	raw, _ := backend.Raw(store.KeyPolicies)
	assert.JSONEq(t, `{"shipping":"<p>Fast</p>","refund":"<p>None</p>"}`, raw)
	text, err := policies.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<p>Fast</p>", text.Shipping)
}

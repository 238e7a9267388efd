package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/blackshot-store/internal/domain/ident"
	"github.com/example/blackshot-store/internal/infrastructure/store"
	"github.com/example/blackshot-store/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProductService() (*Service, *mocks.MockBackend) {
	backend := mocks.NewMockBackend()
	ids := ident.NewGenerator(func() time.Time { return time.UnixMilli(1700000001000) })
	return NewService(store.New(backend), ids), backend
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func sampleProduct() Product {
	return Product{
		Name:           "Robot Kit",
		Description:    "Build your own robot",
		Price:          2499,
		OldPrice:       2999,
		Category:       "Educational",
		Image:          "https://example.com/robot.jpg",
		Specifications: []string{"Pieces: 120", "Age: 8+"},
	}
}

// ============================================
// Add Product Tests
// ============================================

func TestService_Add_ThenGet(t *testing.T) {
	service, _ := newTestProductService()
	ctx := context.Background()

	submitted := sampleProduct()
	submitted.ID = "caller-chosen"

	created, err := service.Add(ctx, submitted)
	require.NoError(t, err)
	assert.Equal(t, ident.ID("1700000001000"), created.ID)

	fetched, found, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)

	expected := sampleProduct()
	expected.ID = created.ID
	assert.Equal(t, expected, fetched)
}

func TestService_Add_UniqueIDs(t *testing.T) {
	service, _ := newTestProductService()
	ctx := context.Background()

	a, err := service.Add(ctx, sampleProduct())
	require.NoError(t, err)
	b, err := service.Add(ctx, sampleProduct())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestService_Add_StoresNumericID(t *testing.T) {
	service, backend := newTestProductService()

	_, err := service.Add(context.Background(), sampleProduct())
	require.NoError(t, err)

	raw, _ := backend.Raw(store.KeyProducts)
	assert.Contains(t, raw, `"id":1700000001000`)
}

func TestService_Add_DefaultsImage(t *testing.T) {
	service, _ := newTestProductService()
	p := sampleProduct()
	p.Image = ""
	p.Specifications = nil

	created, err := service.Add(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, "https://placehold.co/600x400?text=No+Image", created.Image)
	assert.NotNil(t, created.Specifications)
}

func TestService_Add_Validation(t *testing.T) {
	service, backend := newTestProductService()
	ctx := context.Background()

	noName := sampleProduct()
	noName.Name = "  "
	_, err := service.Add(ctx, noName)
	assert.ErrorIs(t, err, ErrInvalidName)

	freePrice := sampleProduct()
	freePrice.Price = 0
	_, err = service.Add(ctx, freePrice)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	assert.Empty(t, backend.SetCalls)
}

func TestService_Add_QuotaExceeded(t *testing.T) {
	backend := mocks.NewMockBackend()
	service := NewService(store.New(backend, store.WithQuota(64)), nil)

	p := sampleProduct()
	p.Image = "data:image/jpeg;base64," + string(make([]byte, 256))
	_, err := service.Add(context.Background(), p)

	var writeErr *store.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.ErrorIs(t, err, store.ErrQuotaExceeded)
	_, found := backend.Raw(store.KeyProducts)
	assert.False(t, found)
}

// ============================================
// Get / List Tests
// ============================================

func TestService_Get_MatchesNumberAndString(t *testing.T) {
	service, backend := newTestProductService()
	backend.Put(store.KeyProducts, `[{"id":42,"name":"Numbered"},{"id":"43","name":"Quoted"}]`)
	ctx := context.Background()

	p, found, err := service.Get(ctx, ident.Parse(" 42 "))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Numbered", p.Name)

	p, found, err = service.Get(ctx, ident.ID("43"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Quoted", p.Name)
}

func TestService_Get_NotFound(t *testing.T) {
	service, _ := newTestProductService()

	_, found, err := service.Get(context.Background(), "404")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestService_List_EmptyWhenMissing(t *testing.T) {
	service, _ := newTestProductService()

	products, err := service.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestService_ListByCategory(t *testing.T) {
	service, backend := newTestProductService()
	backend.Put(store.KeyProducts, `[{"id":1,"category":"Dolls"},{"id":2,"category":"Outdoor"},{"id":3,"category":"dolls"}]`)

	products, err := service.ListByCategory(context.Background(), "DOLLS")

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, ident.ID("1"), products[0].ID)
	assert.Equal(t, ident.ID("3"), products[1].ID)
}

// ============================================
// Update Product Tests
// ============================================

func TestService_Update_MergesFields(t *testing.T) {
	service, _ := newTestProductService()
	ctx := context.Background()
	created, err := service.Add(ctx, sampleProduct())
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID, Patch{
		Price: floatPtr(1999),
		Image: strPtr(""),
	})

	require.NoError(t, err)
	assert.Equal(t, 1999.0, updated.Price)
	assert.Equal(t, "Robot Kit", updated.Name)
	assert.Equal(t, created.Image, updated.Image)
	assert.Equal(t, created.Specifications, updated.Specifications)

	fetched, _, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, fetched)
}

func TestService_Update_NotFound(t *testing.T) {
	service, backend := newTestProductService()
	backend.Put(store.KeyProducts, `[{"id":1,"name":"Only"}]`)

	_, err := service.Update(context.Background(), "2", Patch{Name: strPtr("Other")})

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, backend.SetCalls)
}

func TestService_Update_RejectsEmptyName(t *testing.T) {
	service, backend := newTestProductService()
	backend.Put(store.KeyProducts, `[{"id":1,"name":"Only","price":10}]`)

	_, err := service.Update(context.Background(), "1", Patch{Name: strPtr("")})

	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Empty(t, backend.SetCalls)
}

// ============================================
// Delete Product Tests
// ============================================

func TestService_Delete_RemovesProduct(t *testing.T) {
	service, backend := newTestProductService()
	backend.Put(store.KeyProducts, `[{"id":1,"name":"A"},{"id":2,"name":"B"}]`)
	ctx := context.Background()

	require.NoError(t, service.Delete(ctx, "1"))

	products, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, ident.ID("2"), products[0].ID)
}

func TestService_Delete_MissingIsNoop(t *testing.T) {
	service, backend := newTestProductService()
	backend.Put(store.KeyProducts, `[{"id":1,"name":"A"},{"id":2,"name":"B"}]`)
	ctx := context.Background()
	before, err := service.List(ctx)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, "99"))

	after, err := service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, backend.SetCalls)
}

// ============================================
// Formatting Tests
// ============================================

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price    float64
		expected string
	}{
		{0, "₹0"},
		{999, "₹999"},
		{1499, "₹1,499"},
		{149999, "₹1,49,999"},
		{12345678, "₹1,23,45,678"},
		{1499.5, "₹1,499.5"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPrice(tt.price))
		})
	}
}

func TestParseSpecifications(t *testing.T) {
	assert.Equal(t, []string{"Size: 40cm", "Washable"}, ParseSpecifications(" Size: 40cm, ,Washable,"))
	assert.Equal(t, []string{}, ParseSpecifications(""))
}

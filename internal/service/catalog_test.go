package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

type fakeIndex struct {
	docs      map[uint]models.Product
	searchErr error
	searched  int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uint]models.Product{}}
}

func (f *fakeIndex) Put(_ context.Context, p *models.Product) error {
	f.docs[p.ID] = *p
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id uint) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query string, from, size int) (int64, []models.Product, error) {
	f.searched++
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	out := make([]models.Product, 0)
	for _, p := range f.docs {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return int64(len(out)), out, nil
}

func newTestCatalogService(t *testing.T) (*CatalogService, *fakeIndex, *fakePublisher) {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	images := storage.NewImageStore(bucket)
	images.Now = func() time.Time { return time.UnixMilli(1700000000000) }

	idx := newFakeIndex()
	pub := &fakePublisher{}
	return &CatalogService{
		Repo:   dbtest.Repo(t),
		Images: images,
		Index:  idx,
		Events: pub,
	}, idx, pub
}

func TestCatalogService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	svc, idx, pub := newTestCatalogService(t)

	p, err := svc.CreateProduct(ctx, ProductInput{
		Name: " Linen shirt ", Price: decimal.RequireFromString("10.00"), Category: "tops",
	}, &Upload{Filename: "red shirt.png", ContentType: "image/png", Body: strings.NewReader("png")})
	require.NoError(t, err)

	assert.Equal(t, "Linen shirt", p.Name)
	assert.Equal(t, "/uploads/1700000000000-red_shirt.png", p.Image)

	ok, err := svc.Images.Exists(ctx, p.Image)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("10")))

	assert.Contains(t, idx.docs, p.ID)
	assert.Equal(t, []string{"product_created"}, pub.types())
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCatalogService(t)

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "A", Price: decimal.NewFromInt(-1)}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: " ", Price: decimal.NewFromInt(1)}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Free sample", Price: decimal.Zero}, nil)
	require.NoError(t, err)
	assert.Empty(t, p.Image)

	items, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc, idx, _ := newTestCatalogService(t)

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "A", Price: decimal.NewFromInt(5), Category: "tops"},
		&Upload{Filename: "old.png", Body: strings.NewReader("old")})
	require.NoError(t, err)
	oldImage := p.Image

	price := decimal.RequireFromString("7.25")
	svc.Images.Now = func() time.Time { return time.UnixMilli(1700000000001) }
	updated, err := svc.UpdateProduct(ctx, p.ID, ProductPatch{Price: &price},
		&Upload{Filename: "new.png", Body: strings.NewReader("new")})
	require.NoError(t, err)

	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, "tops", updated.Category)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "/uploads/1700000000001-new.png", updated.Image)

	ok, err := svc.Images.Exists(ctx, oldImage)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, idx.docs[p.ID].Price.Equal(price))

	name := "B"
	updated, err = svc.UpdateProduct(ctx, p.ID, ProductPatch{Name: &name}, nil)
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "/uploads/1700000000001-new.png", updated.Image)

	_, err = svc.UpdateProduct(ctx, 9999, ProductPatch{Name: &name}, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)

	neg := decimal.NewFromInt(-3)
	_, err = svc.UpdateProduct(ctx, p.ID, ProductPatch{Price: &neg}, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogService_DeleteProduct_CascadesToCart(t *testing.T) {
	ctx := context.Background()
	svc, idx, _ := newTestCatalogService(t)
	u := addVerifiedUser(t, svc.Repo, "a@gmail.com", "Istanbul")

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "A", Price: decimal.NewFromInt(10)},
		&Upload{Filename: "a.png", Body: strings.NewReader("a")})
	require.NoError(t, err)
	require.NoError(t, svc.Repo.AddToCart(ctx, &models.CartLine{UserID: u.ID, ProductID: p.ID, Quantity: 2}))
	require.NoError(t, svc.Repo.CreateOrder(ctx, &models.Order{
		UserID: u.ID, TotalPrice: decimal.NewFromInt(20), Items: "2x A", Address: "Istanbul",
	}))

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))

	lines, err := svc.Repo.ListCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	orders, err := svc.Repo.ListOrders(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "2x A", orders[0].Items)

	ok, err := svc.Images.Exists(ctx, p.Image)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, idx.docs, p.ID)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrProductNotFound)
}

func TestCatalogService_SearchProducts(t *testing.T) {
	ctx := context.Background()
	svc, idx, _ := newTestCatalogService(t)

	for _, name := range []string{"Linen shirt", "Silk shirt", "Jeans"} {
		_, err := svc.CreateProduct(ctx, ProductInput{Name: name, Price: decimal.NewFromInt(1)}, nil)
		require.NoError(t, err)
	}

	total, items, err := svc.SearchProducts(ctx, "shirt", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, idx.searched)

	idx.searchErr = errors.New("cluster unavailable")
	total, items, err = svc.SearchProducts(ctx, "jeans", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Jeans", items[0].Name)

	svc.Index = nil
	total, _, err = svc.SearchProducts(ctx, "SHIRT", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = svc.SearchProducts(ctx, "  ", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

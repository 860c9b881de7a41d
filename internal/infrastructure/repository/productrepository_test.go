package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/domain/product"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
)

func TestProductRepository_SaveReusesIdenticalVersions(t *testing.T) {
	f := newFixture(t)
	acme := f.owner("acme")
	globex := f.owner("globex")

	base := f.content("c1", "base-rpms")
	first := f.product(acme.ID(), "prod-1", "Server", map[string]string{"arch": "x86_64"}, base)

	twin, err := product.NewProduct(product.Params{
		ID:         "prod-1",
		Name:       "Server",
		Attributes: map[string]string{"arch": "x86_64"},
		Content:    []product.ProductContent{{Content: f.content("c1", "base-rpms"), Enabled: true}},
	})
	require.NoError(t, err)
	require.NoError(t, f.products.Save(f.ctx, globex.ID(), twin))
	assert.Equal(t, first.UUID(), twin.UUID())

	changed := f.product(globex.ID(), "prod-1", "Server Plus", map[string]string{"arch": "x86_64"}, base)
	assert.NotEqual(t, first.UUID(), changed.UUID())

	got, err := f.products.GetByID(f.ctx, acme.ID(), "prod-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Server", got.Name())
	assert.Equal(t, "x86_64", got.Attributes()["arch"])
	require.Len(t, got.Content(), 1)
	assert.Equal(t, "base-rpms", got.Content()[0].Content.Label())

	got, err = f.products.GetByID(f.ctx, globex.ID(), "prod-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Server Plus", got.Name())
}

func TestProductRepository_GetProductsByIDs(t *testing.T) {
	f := newFixture(t)
	acme := f.owner("acme")
	f.product(acme.ID(), "prod-b", "B", nil)
	f.product(acme.ID(), "prod-a", "A", nil)
	f.product(acme.ID(), "prod-c", "C", nil, f.content("c1", "layered", "prod-a"))

	products, err := f.products.GetProductsByIDs(f.ctx, acme.ID(), []string{"prod-c", "prod-a", "missing", "prod-b"})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "prod-a", products[0].ID())
	assert.Equal(t, "prod-b", products[1].ID())
	assert.Equal(t, "prod-c", products[2].ID())
	assert.True(t, products[2].Modifies("prod-a"))

	other := f.owner("globex")
	products, err = f.products.GetProductsByIDs(f.ctx, other.ID(), []string{"prod-a"})
	require.NoError(t, err)
	assert.Empty(t, products)

	missing, err := f.products.GetByID(f.ctx, acme.ID(), "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepository_RemoveFromOwner(t *testing.T) {
	f := newFixture(t)
	acme := f.owner("acme")
	f.product(acme.ID(), "prod-1", "Server", nil)
	f.product(acme.ID(), "prod-2", "Desktop", nil)

	now := time.Now().UTC()
	f.pool(pool.Params{
		OwnerID:   acme.ID(),
		ProductID: "prod-1",
		StartDate: now.AddDate(0, -1, 0),
		EndDate:   now.AddDate(1, 0, 0),
	})

	err := f.products.RemoveFromOwner(f.ctx, acme.ID(), "prod-1")
	require.Error(t, err)
	assert.True(t, errors.IsIllegalStateError(err))

	require.NoError(t, f.products.RemoveFromOwner(f.ctx, acme.ID(), "prod-2"))
	got, err := f.products.GetByID(f.ctx, acme.ID(), "prod-2")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = f.products.RemoveFromOwner(f.ctx, acme.ID(), "prod-2")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestOwnerRepository_CreateAndLookup(t *testing.T) {
	f := newFixture(t)
	acme := f.owner("acme")
	assert.NotEmpty(t, acme.ID())

	byKey, err := f.owners.GetByKey(f.ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, acme.ID(), byKey.ID())
	assert.Equal(t, "acme_ueber_product", byKey.UeberProductID())

	byID, err := f.owners.GetByID(f.ctx, acme.ID())
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "acme", byID.Key())

	missing, err := f.owners.GetByKey(f.ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

//go:build integration

package repomanager

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *dbx.Conn {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(ctx, db))
	return dbx.NewConn(db)
}

func TestPostgres_CatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	conn := startPostgres(t)
	m := NewPostgresRepositoryManager()

	var productID int64
	err := conn.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		cat, err := m.Categories(tx).Create(ctx, &models.Category{Name: "Phones", Slug: "phones", IsActive: true})
		if err != nil {
			return err
		}
		p, err := m.Products(tx).Create(ctx, &models.Product{
			Name: "Pixel", Slug: "pixel", Price: 500, Stock: 3,
			CategoryID: &cat.ID, SupplierID: 7, IsActive: true,
		})
		if err != nil {
			return err
		}
		productID = p.ID
		_, err = m.Products(tx).Create(ctx, &models.Product{
			Name: "Empty", Slug: "empty", Price: 1, Stock: 0,
			CategoryID: &cat.ID, SupplierID: 7, IsActive: true,
		})
		return err
	})
	require.NoError(t, err)

	available, err := m.Products(conn).ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "pixel", available[0].Slug)

	_, err = m.Products(conn).GetAvailableBySlug(ctx, "empty")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = m.Products(conn).Create(ctx, &models.Product{Name: "Pixel", Slug: "pixel", Price: 1, Stock: 1, SupplierID: 8})
	assert.ErrorIs(t, err, common.ErrorConflict)

	for _, g := range []int{3, 5} {
		_, err := m.Ratings(conn).Create(ctx, &models.Rating{Grade: g, UserID: 1, ProductID: productID, IsActive: true})
		require.NoError(t, err)
	}
	grades, err := m.Ratings(conn).GradesByProduct(ctx, productID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{3, 5}, grades)
}

func TestPostgres_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	conn := startPostgres(t)
	m := NewPostgresRepositoryManager()

	err := conn.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := m.Categories(tx).Create(ctx, &models.Category{Name: "Tmp", Slug: "tmp", IsActive: true}); err != nil {
			return err
		}
		return common.ErrorInternal
	})
	require.ErrorIs(t, err, common.ErrorInternal)

	_, err = m.Categories(conn).GetBySlug(ctx, "tmp")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

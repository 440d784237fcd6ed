package seed_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"medimart/m/internal/migrations"
	"medimart/m/internal/seed"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)
	return db
}

func TestEnsureDefaultUsersIdempotent(t *testing.T) {
	db := setupDB(t)
	seed.EnsureDefaultUsers(db)
	seed.EnsureDefaultUsers(db)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 2, count)

	var roles []string
	require.NoError(t, db.Select(&roles, `SELECT role FROM users ORDER BY role`))
	assert.Equal(t, []string{"admin", "supplier"}, roles)
}

func TestLoadProductsSkipsBadAndDuplicateRows(t *testing.T) {
	db := setupDB(t)

	csvPath := filepath.Join(t.TempDir(), "products.csv")
	content := "name,category,description,price_primary,price_other,inventory,batch_no\n" +
		"Paracetamol 500mg,tablet,Pain relief,100,150,200,B-1021\n" +
		"Broken Row,tablet,Bad inventory,100,150,notanumber,B-9999\n" +
		"Bad Price,tablet,Bad price,abc,150,10,B-8888\n" +
		",tablet,Missing name,100,150,10,B-7777\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	seed.LoadProducts(db, csvPath)
	seed.LoadProducts(db, csvPath) // second run must not duplicate

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM products`))
	assert.Equal(t, 1, count)

	var inventory int64
	require.NoError(t, db.Get(&inventory, `SELECT inventory FROM products WHERE name = 'Paracetamol 500mg'`))
	assert.Equal(t, int64(200), inventory)
}

func TestLoadProductsMissingFile(t *testing.T) {
	db := setupDB(t)
	seed.LoadProducts(db, filepath.Join(t.TempDir(), "absent.csv"))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM products`))
	assert.Equal(t, 0, count)
}

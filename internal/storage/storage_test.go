package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novagadgets/novadesk/internal/config"
)

func TestOpenSQLite_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "novadesk.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'tramites'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "tramites", name)

	ok, err := PingCheck(db)(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "novadesk.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, Migrate(ctx, db, DriverSQLite))
}

func TestMigrate_UnknownDriver(t *testing.T) {
	assert.Error(t, Migrate(context.Background(), nil, "postgres"))
}

func TestMySQLDSN(t *testing.T) {
	cfg := &config.Config{
		DBUser:     "root",
		DBPassword: "secret",
		DBHost:     "db.internal",
		DBPort:     3306,
		DBName:     "esquema_t",
	}

	dsn := mysqlDSN(cfg)

	assert.Contains(t, dsn, "root:secret@tcp(db.internal:3306)/esquema_t")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestPingCheck_NilDB(t *testing.T) {
	ok, err := PingCheck(nil)(context.Background())
	assert.False(t, ok)
	assert.Error(t, err)
}

package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"farmlink-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "localhost",
		DBUser:     "farmlink",
		DBPassword: "secret",
		DBName:     "farmlink",
		DBPort:     "5432",
	}

	assert.Equal(t,
		"host=localhost user=farmlink password=secret dbname=farmlink port=5432 sslmode=disable",
		buildDSN(cfg),
	)
}

func TestNewDatabase_InvalidDriver(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{}, "no_such_driver")

	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to DB")
}

// fakeDriver hands out connections whose Ping result is configurable.
type fakeDriver struct{ pingErr error }

func (d *fakeDriver) Open(string) (driver.Conn, error) { return &fakeConn{pingErr: d.pingErr}, nil }

type fakeConn struct{ pingErr error }

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }
func (c *fakeConn) Ping(context.Context) error          { return c.pingErr }

func init() {
	sql.Register("fake_ok", &fakeDriver{})
	sql.Register("fake_down", &fakeDriver{pingErr: errors.New("connection refused")})
}

func TestNewDatabase_Success(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{DBHost: "localhost"}, "fake_ok")

	require.NoError(t, err)
	require.NotNil(t, db)
	assert.NoError(t, db.Close())
}

func TestNewDatabase_PingFailure(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{DBHost: "db"}, "fake_down")

	assert.Nil(t, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping DB")
}

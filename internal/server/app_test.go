package server

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/postkeeper/internal/server/assets"
	"github.com/dmitrijs2005/postkeeper/internal/server/config"
	"github.com/dmitrijs2005/postkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepoManager struct {
	repomanager.RepositoryManager
	migrateErr error
	migrated   bool
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	f.migrated = true
	return f.migrateErr
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.AssetDir = filepath.Join(t.TempDir(), "uploads")
	c.StagingDir = t.TempDir()
	c.ShutdownTimeout = time.Second
	c.LogLevel = "error"
	return c
}

func stubDeps(t *testing.T, rm *fakeRepoManager) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origRM := openDB, newRepositoryManager
	t.Cleanup(func() {
		openDB, newRepositoryManager = origOpen, origRM
		_ = db.Close()
	})

	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	return mock
}

func TestNewApp_RunsMigrationsAndStops(t *testing.T) {
	rm := &fakeRepoManager{}
	mock := stubDeps(t, rm)
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	assert.True(t, rm.migrated)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MigrationError(t *testing.T) {
	mock := stubDeps(t, &fakeRepoManager{migrateErr: errors.New("no db")})
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig(t))
	require.ErrorContains(t, err, "no db")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_OpenError(t *testing.T) {
	origOpen := openDB
	t.Cleanup(func() { openDB = origOpen })
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	_, err := NewApp(context.Background(), testConfig(t))
	require.ErrorContains(t, err, "bad dsn")
}

func TestNewAssetStore(t *testing.T) {
	c := testConfig(t)

	st, err := newAssetStore(context.Background(), c)
	require.NoError(t, err)
	assert.IsType(t, &assets.LocalStore{}, st)

	c.AssetBackend = "ftp"
	_, err = newAssetStore(context.Background(), c)
	require.ErrorContains(t, err, "unknown asset backend")
}

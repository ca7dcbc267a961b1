package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerShutdownReportsClosed(t *testing.T) {
	gormDB, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(gormDB))

	server, err := NewServer(database.New(gormDB), WithConfig(map[string]string{
		"JWT_SECRET": testSecret,
		"PORT":       "0",
	}))
	require.NoError(t, err)

	// nothing reads the channel after shutdown, so Start must not block on it
	errChannel := make(chan error, 2)
	go server.Start(errChannel)
	time.Sleep(50 * time.Millisecond)

	server.ShutdownGracefully(time.Second)

	select {
	case err := <-errChannel:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not report shutdown")
	}
}

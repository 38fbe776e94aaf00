//go:build basic

// Package integration contains integration tests for marshalgo.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or use: make test-integration
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMarshalgoVersion verifies the binary builds and reports its version.
func TestMarshalgoVersion(t *testing.T) {
	workDir := t.TempDir()
	err := runMarshalgoCommand(t, workDir, "version")
	require.NoError(t, err)
}

// TestMarshalgoWithSQLite exercises the cache and fetch-log lifecycle against
// the default SQLite backend in an isolated HOME.
func TestMarshalgoWithSQLite(t *testing.T) {
	workDir := t.TempDir()

	_ = os.Setenv("MARSHALGO_CACHE_BACKEND", "sqlite")
	_ = os.Setenv("MARSHALGO_FETCHLOG_BACKEND", "sqlite")
	defer func() { _ = os.Unsetenv("MARSHALGO_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("MARSHALGO_FETCHLOG_BACKEND") }()

	// Migrate brings up the fetch-log schema on a fresh database
	err := runMarshalgoCommand(t, workDir, "fetchlog", "migrate")
	require.NoError(t, err)

	// Status works on both stores
	err = runMarshalgoCommand(t, workDir, "cache", "status")
	require.NoError(t, err)
	err = runMarshalgoCommand(t, workDir, "fetchlog", "status")
	require.NoError(t, err)

	// The SQLite files land under the isolated HOME
	_, err = os.Stat(filepath.Join(workDir, ".marshalgo_cache.db"))
	assert.NoError(t, err, "cache DB should exist under HOME")
	_, err = os.Stat(filepath.Join(workDir, ".marshalgo_fetchlog.db"))
	assert.NoError(t, err, "fetch-log DB should exist under HOME")

	// Clear both stores
	err = runMarshalgoCommand(t, workDir, "cache", "clear")
	require.NoError(t, err)
	err = runMarshalgoCommand(t, workDir, "fetchlog", "clear")
	require.NoError(t, err)
}

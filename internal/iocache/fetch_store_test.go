package iocache

import (
	"testing"
	"time"

	"github.com/growthlab/marshalgo/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchStoreLifecycle tests a full fetch run against an in-memory SQLite store.
func TestFetchStoreLifecycle(t *testing.T) {
	store, err := NewFetchStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err, "Failed to create SQLite fetch store")
	defer func() { _ = store.Close() }()

	startTime := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	configParams := map[string]any{
		"program": "Cosmology",
		"workers": 12,
	}

	// Begin a run
	runID, err := store.BeginFetch(startTime, configParams)
	require.NoError(t, err, "BeginFetch should not fail")
	assert.Greater(t, runID, int64(0), "Run ID should be positive")

	// Record per-source outcomes
	outcomes := []schema.FetchOutcome{
		{Name: "ZTF20aaelulu", OK: true, Duration: 2 * time.Second, Rows: 120, Detections: 45},
		{Name: "ZTF19abcdefg", OK: true, Duration: time.Second, Rows: 80, Detections: 12},
		{Name: "ZTF20badname", OK: false, Error: "photometry table not found", Duration: time.Second},
	}
	for _, outcome := range outcomes {
		err := store.RecordSourceFetch(runID, outcome)
		assert.NoError(t, err, "RecordSourceFetch should not fail for %s", outcome.Name)
	}

	// End the run
	endTime := startTime.Add(5 * time.Minute)
	err = store.EndFetch(runID, endTime, 2, 1)
	require.NoError(t, err, "EndFetch should not fail")

	// Verify status
	status, err := store.GetStatus()
	require.NoError(t, err, "GetStatus should not fail")
	assert.Equal(t, "sqlite", status.Backend, "Backend should be sqlite")
	assert.True(t, status.Connected, "Should be connected")
	assert.Equal(t, 1, status.TotalRuns, "Total runs should be 1")
	assert.Equal(t, runID, status.LastRunID, "Last run ID mismatch")
	assert.Equal(t, 3, status.TotalFetches, "Total fetches should be 3")
	assert.Equal(t, int64(1), status.TableSizes[fetchRunsTable], "Fetch runs table size mismatch")
	assert.Equal(t, int64(3), status.TableSizes[sourceFetchesTable], "Source fetches table size mismatch")

	// Verify run record
	runs, err := store.GetAllRuns()
	require.NoError(t, err, "GetAllRuns should not fail")
	require.Len(t, runs, 1, "Should have one run record")

	run := runs[0]
	assert.Equal(t, runID, run.RunID, "Run ID mismatch")
	assert.True(t, run.StartTime.Equal(startTime), "Start time mismatch")
	require.NotNil(t, run.EndTime, "End time should be set")
	assert.True(t, run.EndTime.Equal(endTime), "End time mismatch")
	require.NotNil(t, run.RunDurationMs, "Duration should be set")
	assert.Equal(t, int32(5*60*1000), *run.RunDurationMs, "Duration mismatch")
	assert.Equal(t, int32(2), run.Succeeded, "Succeeded count mismatch")
	assert.Equal(t, int32(1), run.Failed, "Failed count mismatch")
	require.NotNil(t, run.ConfigParams, "Config params should be set")
	assert.Contains(t, *run.ConfigParams, "Cosmology", "Config params should record the program")

	// Verify per-source records
	fetches, err := store.GetAllSourceFetches()
	require.NoError(t, err, "GetAllSourceFetches should not fail")
	require.Len(t, fetches, 3, "Should have three source fetch records")

	byName := make(map[string]schema.SourceFetchRecord)
	for _, fetch := range fetches {
		assert.Equal(t, runID, fetch.RunID, "Source fetch run ID mismatch")
		byName[fetch.SourceName] = fetch
	}

	good := byName["ZTF20aaelulu"]
	assert.True(t, good.OK, "ZTF20aaelulu should be marked OK")
	assert.Equal(t, int32(120), good.Rows, "Row count mismatch")
	assert.Equal(t, int32(45), good.Detections, "Detection count mismatch")
	assert.Nil(t, good.Error, "Successful fetch should have no error text")

	bad := byName["ZTF20badname"]
	assert.False(t, bad.OK, "ZTF20badname should be marked failed")
	require.NotNil(t, bad.Error, "Failed fetch should carry error text")
	assert.Equal(t, "photometry table not found", *bad.Error, "Error text mismatch")
}

// TestFetchStoreMultipleRuns tests that runs are returned newest first.
func TestFetchStoreMultipleRuns(t *testing.T) {
	store, err := NewFetchStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err, "Failed to create SQLite fetch store")
	defer func() { _ = store.Close() }()

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	var runIDs []int64
	for i := range 3 {
		runID, err := store.BeginFetch(base.Add(time.Duration(i)*time.Hour), nil)
		require.NoError(t, err, "BeginFetch should not fail")
		runIDs = append(runIDs, runID)
	}

	runs, err := store.GetAllRuns()
	require.NoError(t, err, "GetAllRuns should not fail")
	require.Len(t, runs, 3, "Should have three runs")

	// Newest first
	assert.Equal(t, runIDs[2], runs[0].RunID, "First result should be the newest run")
	assert.Equal(t, runIDs[0], runs[2].RunID, "Last result should be the oldest run")

	// Unfinished runs have no end time
	assert.Nil(t, runs[0].EndTime, "Unfinished run should have nil end time")
	assert.Nil(t, runs[0].RunDurationMs, "Unfinished run should have nil duration")
}

// TestFetchStoreNoneBackend tests that all operations are no-ops for NoneBackend.
func TestFetchStoreNoneBackend(t *testing.T) {
	store, err := NewFetchStore(schema.NoneBackend, "")
	require.NoError(t, err, "Failed to create none backend fetch store")

	runID, err := store.BeginFetch(time.Now(), nil)
	assert.NoError(t, err, "BeginFetch should not error on none backend")
	assert.Equal(t, int64(0), runID, "BeginFetch should return zero run ID")

	err = store.RecordSourceFetch(runID, schema.FetchOutcome{Name: "ZTF20aaelulu", OK: true})
	assert.NoError(t, err, "RecordSourceFetch should not error on none backend")

	err = store.EndFetch(runID, time.Now(), 1, 0)
	assert.NoError(t, err, "EndFetch should not error on none backend")

	status, err := store.GetStatus()
	assert.NoError(t, err, "GetStatus should not error on none backend")
	assert.False(t, status.Connected, "None backend should not be connected")

	runs, err := store.GetAllRuns()
	assert.NoError(t, err, "GetAllRuns should not error on none backend")
	assert.Nil(t, runs, "GetAllRuns should return nil on none backend")

	err = store.Close()
	assert.NoError(t, err, "Close should not error on none backend")
}

// TestFetchStoreUnsupportedBackend tests error handling for unknown backends.
func TestFetchStoreUnsupportedBackend(t *testing.T) {
	_, err := NewFetchStore("cassandra", "")
	assert.Error(t, err, "Expected error for unsupported backend")
}

// TestGetCreateFetchLogQueries tests the CREATE TABLE queries for all backends.
func TestGetCreateFetchLogQueries(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		wantRuns    []string
		wantFetches []string
	}{
		{
			name:    "SQLite backend",
			backend: schema.SQLiteBackend,
			wantRuns: []string{
				"CREATE TABLE IF NOT EXISTS",
				`"marshal_fetch_runs"`,
				"run_id INTEGER PRIMARY KEY AUTOINCREMENT",
				"start_time TEXT NOT NULL",
			},
			wantFetches: []string{
				`"marshal_source_fetches"`,
				"source_name TEXT NOT NULL",
				"row_count INTEGER NOT NULL",
				"PRIMARY KEY (run_id, source_name)",
			},
		},
		{
			name:    "MySQL backend",
			backend: schema.MySQLBackend,
			wantRuns: []string{
				"`marshal_fetch_runs`",
				"run_id BIGINT AUTO_INCREMENT PRIMARY KEY",
				"start_time DATETIME(6) NOT NULL",
			},
			wantFetches: []string{
				"`marshal_source_fetches`",
				"source_name VARCHAR(100) NOT NULL",
				"ok BOOLEAN NOT NULL",
			},
		},
		{
			name:    "PostgreSQL backend",
			backend: schema.PostgreSQLBackend,
			wantRuns: []string{
				`"marshal_fetch_runs"`,
				"run_id BIGSERIAL PRIMARY KEY",
				"start_time TIMESTAMPTZ NOT NULL",
			},
			wantFetches: []string{
				`"marshal_source_fetches"`,
				"fetch_time TIMESTAMPTZ NOT NULL",
				"detections INT NOT NULL",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRuns := getCreateFetchRunsQuery(tt.backend)
			for _, want := range tt.wantRuns {
				assert.Contains(t, gotRuns, want, "runs query should contain %q", want)
			}
			gotFetches := getCreateSourceFetchesQuery(tt.backend)
			for _, want := range tt.wantFetches {
				assert.Contains(t, gotFetches, want, "fetches query should contain %q", want)
			}
		})
	}
}

// TestFormatTime tests per-backend time formatting.
func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, time.January, 2, 3, 4, 5, 600000000, time.UTC)

	// SQLite stores RFC3339Nano strings
	got := formatTime(ts, schema.SQLiteBackend)
	str, ok := got.(string)
	assert.True(t, ok, "SQLite format should be a string")
	assert.Equal(t, "2026-01-02T03:04:05.6Z", str, "SQLite time string mismatch")

	// MySQL and PostgreSQL pass through native time values
	got = formatTime(ts, schema.MySQLBackend)
	native, ok := got.(time.Time)
	assert.True(t, ok, "MySQL format should be time.Time")
	assert.True(t, native.Equal(ts), "MySQL time mismatch")
}

package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// responseCacheTable is the name of the table for cached portal responses.
const responseCacheTable = "marshal_response_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for cache storage.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetFetchLogDBFilePath returns the path to the SQLite DB file for fetch-log storage.
func GetFetchLogDBFilePath() string {
	return contract.GetFetchLogDBFilePath()
}

// InitStores initializes the global cache manager with separate cache and fetch-log stores.
// cacheBackend and cacheConnStr can be empty to disable response caching.
// fetchBackend and fetchConnStr can be empty to disable fetch-run tracking.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, fetchBackend schema.DatabaseBackend, fetchConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var err error

		// Initialize Response Cache Store only if backend is configured
		var responseCacheStore contract.CacheStore
		if cacheBackend != "" {
			responseCacheStore, err = NewCacheStore(responseCacheTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize response caching: %w", err)
				return
			}
		}

		// Initialize Fetch-Log Store only if backend is configured
		var fetchLogStore contract.FetchStore
		if fetchBackend != "" {
			fetchLogStore, err = NewFetchStore(fetchBackend, fetchConnStr)
			if err != nil {
				if responseCacheStore != nil {
					_ = responseCacheStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize fetch-log store: %w", err)
				return
			}
		}

		// Assign to global manager
		Manager.cache = responseCacheStore
		Manager.fetchLog = fetchLogStore
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
		if Manager.fetchLog != nil {
			_ = Manager.fetchLog.Close()
		}
	})
}

// ClearCache clears the response cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTable("mysql", connStr, responseCacheTable)

	case schema.PostgreSQLBackend:
		return clearSQLTable("pgx", connStr, responseCacheTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearFetchLog clears the fetch-log data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the fetch-log tables.
// For NoneBackend, it does nothing.
func ClearFetchLog(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		// Clear fetch-log tables
		tables := []string{sourceFetchesTable, fetchRunsTable}
		for _, table := range tables {
			if err := clearSQLTable("mysql", connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.PostgreSQLBackend:
		// Clear fetch-log tables
		tables := []string{sourceFetchesTable, fetchRunsTable}
		for _, table := range tables {
			if err := clearSQLTable("pgx", connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported fetch-log backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName)
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}

package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// CacheStoreImpl stores portal response bodies keyed by endpoint and source.
// Each row carries a payload version and a stored-at timestamp so readers can
// apply their own staleness policy.
type CacheStoreImpl struct {
	db         *sql.DB
	tableName  string
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.CacheStore = &CacheStoreImpl{} // Compile-time check

// NewCacheStore initializes and returns a new CacheStore based on the backend type.
// A NoneBackend store accepts writes silently and misses on every read.
func NewCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		return &CacheStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	store := &CacheStoreImpl{tableName: tableName, backend: backend, connStr: connStr}

	var err error
	switch backend {
	case schema.SQLiteBackend:
		store.driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetDBFilePath()
		}
		store.db, err = sql.Open(store.driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite cache at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Single connection avoids "database is locked" under concurrent writers
		store.db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		store.driverName = "mysql"
		store.db, err = sql.Open(store.driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL cache: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		store.driverName = "pgx"
		store.db, err = sql.Open(store.driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL cache: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := store.db.Ping(); err != nil {
		_ = store.db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if _, err := store.db.Exec(store.createTableQuery()); err != nil {
		_ = store.db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return store, nil
}

// createTableQuery builds the response-cache DDL with backend-specific column types.
func (cs *CacheStoreImpl) createTableQuery() string {
	quoted := quoteTableName(cs.tableName, cs.backend)
	var keyType, blobType, tsType string
	switch cs.backend {
	case schema.MySQLBackend:
		// MySQL cannot use TEXT as a primary key without a prefix length
		keyType, blobType, tsType = "VARCHAR(255)", "MEDIUMBLOB", "BIGINT"
	case schema.PostgreSQLBackend:
		keyType, blobType, tsType = "TEXT", "BYTEA", "BIGINT"
	default: // SQLite
		keyType, blobType, tsType = "TEXT", "BLOB", "INTEGER"
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			endpoint_key %s PRIMARY KEY,
			payload %s NOT NULL,
			payload_version INTEGER NOT NULL,
			stored_at %s NOT NULL
		);
	`, quoted, keyType, blobType, tsType)
}

// Get retrieves a cached payload by key. Misses surface as sql.ErrNoRows.
func (cs *CacheStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	quoted := quoteTableName(cs.tableName, cs.backend)
	query := fmt.Sprintf(`SELECT payload, payload_version, stored_at FROM %s WHERE endpoint_key = %s`, quoted, cs.getPlaceholder())

	var payload []byte
	var version int
	var storedAt int64
	if err := cs.db.QueryRow(query, key).Scan(&payload, &version, &storedAt); err != nil {
		return nil, 0, 0, err
	}
	return payload, version, storedAt, nil
}

// Set upserts a payload under the given key.
func (cs *CacheStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return nil
	}
	_, err := cs.db.Exec(cs.getUpsertQuery(), key, value, version, timestamp)
	return err
}

// getPlaceholder returns the parameter placeholder for the backend.
func (cs *CacheStoreImpl) getPlaceholder() string {
	if cs.backend == schema.PostgreSQLBackend {
		return "$1"
	}
	return "?" // SQLite and MySQL
}

// getUpsertQuery returns the UPSERT query for the backend.
func (cs *CacheStoreImpl) getUpsertQuery() string {
	quoted := quoteTableName(cs.tableName, cs.backend)
	switch cs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (endpoint_key, payload, payload_version, stored_at) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE payload = new.payload, payload_version = new.payload_version, stored_at = new.stored_at`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (endpoint_key, payload, payload_version, stored_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (endpoint_key) DO UPDATE SET payload = EXCLUDED.payload, payload_version = EXCLUDED.payload_version, stored_at = EXCLUDED.stored_at`, quoted)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (endpoint_key, payload, payload_version, stored_at) VALUES (?, ?, ?, ?)`, quoted)
	}
}

// Close closes the underlying DB connection.
func (cs *CacheStoreImpl) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

// GetStatus reports entry counts, entry-time bounds and an on-disk size estimate.
func (cs *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(cs.backend),
		Connected: cs.db != nil,
	}
	if cs.backend == schema.NoneBackend || cs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(cs.tableName, cs.backend)

	row := cs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted))
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row = cs.db.QueryRow(fmt.Sprintf("SELECT MAX(stored_at), MIN(stored_at) FROM %s", quoted))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry time bounds: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	status.TableSizeBytes = cs.tableSize(status.TotalEntries)
	return status, nil
}

// tableSize estimates the on-disk table size, falling back to a rough
// per-row estimate when the backend-specific query fails.
func (cs *CacheStoreImpl) tableSize(entries int) int64 {
	fallback := int64(entries) * 1000

	switch cs.backend {
	case schema.SQLiteBackend:
		var size int64
		row := cs.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		dsn, err := mysql.ParseDSN(cs.connStr)
		if err != nil || dsn.DBName == "" {
			return fallback
		}
		var size int64
		row := cs.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", dsn.DBName, cs.tableName)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.PostgreSQLBackend:
		var size int64
		row := cs.db.QueryRow("SELECT pg_total_relation_size($1)", cs.tableName)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
		return size

	default:
		return fallback
	}
}

// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"io"
	"time"

	"github.com/growthlab/marshalgo/schema"
)

// PortalClient defines the typed operations against the Marshal CGI portal.
// This allows the session and orchestration logic to be tested without a
// live portal behind it.
type PortalClient interface {
	// --- Program / Source Listing ---

	// ListPrograms returns the science programs the authenticated user belongs to.
	ListPrograms(ctx context.Context) ([]schema.Program, error)

	// ListProgramSources returns the saved sources of a program, keyed by source name.
	ListProgramSources(ctx context.Context, programIdx int) ([]schema.Record, error)

	// --- Scanning Page ---

	// QueryCandidates returns the scanning-page candidates of a program for one
	// time window. The portal caps a single response at about 200 rows, so
	// callers are expected to slice wide windows before calling this.
	QueryCandidates(ctx context.Context, programIdx int, start, end time.Time, showSaved schema.ShowSaved) ([]schema.Record, error)

	// --- Photometry / Summary ---

	// FetchLightcurve downloads and parses the photometry table of a source.
	FetchLightcurve(ctx context.Context, name string) (*schema.Lightcurve, error)

	// SourceSummary returns the nested summary tree of a saved source.
	SourceSummary(ctx context.Context, sourceID string) (schema.Record, error)

	// --- Annotations ---

	// PostComment adds a new annotation to a source.
	PostComment(ctx context.Context, name string, text string, kind schema.CommentType) error

	// EditComment replaces the text and type of an existing annotation.
	EditComment(ctx context.Context, name string, commentID int64, text string, kind schema.CommentType) error

	// DeleteComment removes an annotation from a source.
	DeleteComment(ctx context.Context, name string, commentID int64) error

	// --- Ingestion / Saving ---

	// IngestAvro requests ingestion of an alert-archive detection by its avro id.
	IngestAvro(ctx context.Context, avroID string, programID int) error

	// SaveCandidate saves a scanning-page candidate into a program.
	SaveCandidate(ctx context.Context, candID int64, programID int) error

	// --- Spectra ---

	// CheckSpectra reports whether the portal has at least one spectrum for
	// the source. The portal answers with a sentinel body, not a status code.
	CheckSpectra(ctx context.Context, name string) (bool, error)

	// DownloadSpectra streams the spectra tarball of a source into w.
	DownloadSpectra(ctx context.Context, name string, w io.Writer) error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetFetchStore() FetchStore
}

// CacheStore defines the interface for cached portal responses.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// FetchStore defines the interface for tracking batch fetch runs and their
// per-source outcomes.
type FetchStore interface {
	// BeginFetch creates a new fetch run and returns its unique ID
	BeginFetch(startTime time.Time, configParams map[string]any) (int64, error)

	// RecordSourceFetch stores the outcome of fetching a single source
	RecordSourceFetch(runID int64, outcome schema.FetchOutcome) error

	// EndFetch updates the fetch run with completion data
	EndFetch(runID int64, endTime time.Time, succeeded, failed int) error

	// GetStatus returns status information about the fetch-log store
	GetStatus() (schema.FetchLogStatus, error)

	// GetAllRuns returns every recorded fetch run, newest first
	GetAllRuns() ([]schema.FetchRunRecord, error)

	// GetAllSourceFetches returns every recorded per-source outcome
	GetAllSourceFetches() ([]schema.SourceFetchRecord, error)

	// Close closes the underlying connection
	Close() error
}

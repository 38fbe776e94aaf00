package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// ShowSaved selects which scanning-page candidates a query returns.
	ShowSaved string

	// CommentType represents the annotation type accepted by the Marshal.
	CommentType string

	// DuplicateMode controls how posting an already-existing comment behaves.
	DuplicateMode string
)

// NonDetectionMag is the sentinel magnitude above which a lightcurve row is
// an upper limit rather than a detection. The Marshal uses 90/99 informally
// as "no detection" placeholders; anything >= 90 is treated uniformly.
const NonDetectionMag = 90.0

// FitZeropoint is the fixed zeropoint used for the fitting-table flux scale.
const FitZeropoint = 25.0

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All showsaved filters understood by list_candidates.cgi.
const (
	ShowSavedNone        ShowSaved = "none"
	ShowSavedSelected    ShowSaved = "selected" // default
	ShowSavedNotSelected ShowSaved = "notSelected"
	ShowSavedOnlySel     ShowSaved = "onlySelected"
	ShowSavedOnlyNotSel  ShowSaved = "onlyNotSelected"
	ShowSavedAll         ShowSaved = "all"
)

// All comment types accepted by edit_comment.cgi.
const (
	CommentPlain          CommentType = "comment" // default
	CommentRedshift       CommentType = "redshift"
	CommentClassification CommentType = "classification"
	CommentInfo           CommentType = "info"
)

// All duplicate modes for posting comments.
const (
	DuplicateNo   DuplicateMode = "no" // default: skip if identical comment exists
	DuplicateAdd  DuplicateMode = "add"
	DuplicateEdit DuplicateMode = "edit"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidShowSaved lists all valid scanning-page filters.
var ValidShowSaved = map[ShowSaved]struct{}{
	ShowSavedNone:        {},
	ShowSavedSelected:    {},
	ShowSavedNotSelected: {},
	ShowSavedOnlySel:     {},
	ShowSavedOnlyNotSel:  {},
	ShowSavedAll:         {},
}

// ValidCommentTypes lists all valid annotation types.
var ValidCommentTypes = map[CommentType]struct{}{
	CommentPlain:          {},
	CommentRedshift:       {},
	CommentClassification: {},
	CommentInfo:           {},
}

// ValidDuplicateModes lists all valid duplicate modes.
var ValidDuplicateModes = map[DuplicateMode]struct{}{
	DuplicateNo:   {},
	DuplicateAdd:  {},
	DuplicateEdit: {},
}

// DefaultBandpasses maps a telescope+instrument and filter pair to the
// bandpass name used in fitting tables. Only the pairs present here survive
// the fitting-table conversion; registering throughput curves is out of scope.
var DefaultBandpasses = map[[2]string]string{
	{"P48+ZTF", "g"}:       "p48g",
	{"P48+ZTF", "r"}:       "p48r",
	{"P48+ZTF", "i"}:       "p48i",
	{"P60+ZTF", "g"}:       "p60g",
	{"P60+ZTF", "r"}:       "p60r",
	{"P60+ZTF", "i"}:       "p60i",
	{"P60+ZTF", "u"}:       "p60u",
	{"Swift+UVOT", "B"}:    "uvotb",
	{"Swift+UVOT", "u"}:    "uvotu",
	{"Swift+UVOT", "V"}:    "uvotv",
	{"Swift+UVOT", "UVM2"}: "uvm2",
	{"Swift+UVOT", "UVW1"}: "uvw1",
	{"Swift+UVOT", "UVW2"}: "uvw2",
}

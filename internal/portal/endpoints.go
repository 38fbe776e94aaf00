// Package portal implements the HTTP layer for the GROWTH Marshal CGI scripts.
package portal

// Names of the CGI scripts the Marshal exposes. Only scripts in this catalog
// can be called; anything else is a programming error, not a runtime condition.
const (
	EndpointListPrograms       = "list_programs.cgi"
	EndpointListProgramSources = "list_program_sources.cgi"
	EndpointListCandidates     = "list_candidates.cgi"
	EndpointPrintLightcurve    = "print_lc.cgi"
	EndpointSourceSummary      = "source_summary.cgi"
	EndpointIngestAvroID       = "ingest_avro_id.cgi"
	EndpointSaveCandidate      = "save_cand_growth.cgi"
	EndpointEditComment        = "edit_comment.cgi"
	EndpointBatchSpec          = "batch_spec.cgi"
)

// knownEndpoints is the allow-list checked before any request leaves the process.
var knownEndpoints = map[string]struct{}{
	EndpointListPrograms:       {},
	EndpointListProgramSources: {},
	EndpointListCandidates:     {},
	EndpointPrintLightcurve:    {},
	EndpointSourceSummary:      {},
	EndpointIngestAvroID:       {},
	EndpointSaveCandidate:      {},
	EndpointEditComment:        {},
	EndpointBatchSpec:          {},
}

// KnownEndpoint reports whether name is part of the CGI catalog.
func KnownEndpoint(name string) bool {
	_, ok := knownEndpoints[name]
	return ok
}

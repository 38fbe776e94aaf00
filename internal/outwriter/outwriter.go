// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSources prints saved-source records using the configured output format.
func (ow *OutWriter) WriteSources(sources []schema.Record, cfg *contract.Config, duration time.Duration) error {
	return WriteSourceResults(sources, cfg, duration)
}

// WriteCandidates prints scanning-page candidates using the configured output format.
func (ow *OutWriter) WriteCandidates(candidates []schema.Record, cfg *contract.Config, duration time.Duration) error {
	return WriteCandidateResults(candidates, cfg, duration)
}

// WriteLightcurve prints the photometry of one source using the configured output format.
func (ow *OutWriter) WriteLightcurve(lc *schema.Lightcurve, cfg *contract.Config, duration time.Duration) error {
	return WriteLightcurveResults(lc, cfg, duration)
}

// WriteFitTable prints a fitting-ready photometry table using the configured output format.
func (ow *OutWriter) WriteFitTable(ft *schema.FitTable, cfg *contract.Config) error {
	return WriteFitTableResults(ft, cfg)
}

// WriteBatch prints the tally of a batch operation using the configured output format.
func (ow *OutWriter) WriteBatch(result *schema.BatchResult, cfg *contract.Config, duration time.Duration) error {
	return WriteBatchResults(result, cfg, duration)
}

// WriteComments prints the annotations of one source using the configured output format.
func (ow *OutWriter) WriteComments(name string, comments []schema.Comment, cfg *contract.Config) error {
	return WriteCommentResults(name, comments, cfg)
}

// WriteRetrieved prints key/value pairs pulled out of a source record.
func (ow *OutWriter) WriteRetrieved(name string, values map[string]any, cfg *contract.Config) error {
	return WriteRetrievedResults(name, values, cfg)
}

// Package schema has models, constants and global variables for all parts of marshalgo.
package schema

import "time"

// Record is a single entity returned by the Marshal, either a saved source
// or a scanning-page candidate. The portal does not guarantee a schema beyond
// the presence of an identifier field, so records stay generic key/value maps
// and callers pull out the fields they need via the typed accessors.
type Record map[string]any

// Program represents one science program the user is a member of.
type Program struct {
	Name       string `json:"name"`       // Program name as shown on the Marshal (case-sensitive)
	ProgramIdx int    `json:"programidx"` // Index used by all per-program CGI queries
	ProgramID  int    `json:"programid"`  // Numeric science program ID used for ingestion
	Role       string `json:"role"`       // Membership role, if reported
}

// LightcurveRow is one photometry row from print_lc.cgi.
// Rows with MagPSF >= NonDetectionMag are upper limits, not detections.
type LightcurveRow struct {
	Date        string  `json:"date"`        // Observation date string as reported
	JDObs       float64 `json:"jdobs"`       // Julian date of the observation
	Filter      string  `json:"filter"`      // Filter name (g, r, i, ...)
	Instrument  string  `json:"instrument"`  // Telescope+instrument pair (e.g. P48+ZTF)
	MagPSF      float64 `json:"magpsf"`      // PSF magnitude; >= 90 means non-detection
	SigmaMagPSF float64 `json:"sigmamagpsf"` // Magnitude uncertainty
	LimMag      float64 `json:"limmag"`      // Limiting magnitude of the exposure
	IsDiffPos   string  `json:"isdiffpos"`   // Positive/negative subtraction flag
	RefSys      string  `json:"refsys"`      // Reference system, if reported
}

// IsDetection reports whether the row is a real flux measurement rather than
// an upper-limit placeholder.
func (r LightcurveRow) IsDetection() bool {
	return r.MagPSF < NonDetectionMag
}

// Lightcurve holds the photometry of a single source together with the
// source metadata needed downstream by the fitting-table conversion.
type Lightcurve struct {
	Name           string          `json:"name"`
	RA             float64         `json:"ra"`
	Dec            float64         `json:"dec"`
	Redshift       *float64        `json:"redshift,omitempty"`
	Classification string          `json:"classification,omitempty"`
	Rows           []LightcurveRow `json:"rows"`
}

// FitPoint is one row of the photometric-fitting table derived from a
// deduplicated lightcurve. Fluxes are in counts for a fixed zeropoint.
type FitPoint struct {
	MJD     float64 `json:"mjd"`
	Band    string  `json:"band"`
	Flux    float64 `json:"flux"`
	FluxErr float64 `json:"fluxerr"`
	ZP      float64 `json:"zp"`
	ZPSys   string  `json:"zpsys"`
}

// FitTable is the fitting-ready view of a lightcurve.
type FitTable struct {
	Name     string     `json:"name"`
	Redshift *float64   `json:"redshift,omitempty"`
	Points   []FitPoint `json:"points"`
}

// Comment is one annotation attached to a source.
type Comment struct {
	ID     int64  `json:"id"`
	Type   string `json:"type"`
	Text   string `json:"text"`
	Author string `json:"author"`
	Date   string `json:"date,omitempty"`
}

// FetchOutcome summarises one item of a batch download.
type FetchOutcome struct {
	Name       string        `json:"name"`
	OK         bool          `json:"ok"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	Rows       int           `json:"rows"`       // Photometry rows fetched (lightcurve batches)
	Detections int           `json:"detections"` // Rows below the non-detection sentinel
}

// BatchResult is the final tally of a batch operation. Batch operations
// continue past individual failures and report the tally instead of aborting.
type BatchResult struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Outcomes  []FetchOutcome `json:"outcomes"`
}

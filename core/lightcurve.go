package core

import (
	"fmt"
	"math"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// jdToMJDOffset converts a Julian date to a modified Julian date.
const jdToMJDOffset = 2400000.5

// fitZPSys is the magnitude system the fitting table is expressed in.
const fitZPSys = "ab"

// DedupeLightcurve collapses photometry rows that share a Julian date. The
// portal re-serves rows across overlapping queries, so duplicates are common.
// Policy per distinct JD value:
//   - at least one detection present: keep the first row of each distinct
//     detection magnitude, drop all non-detections;
//   - only non-detections present: keep one row when all magnitudes agree,
//     otherwise drop the whole group, since conflicting limits at the same
//     JD cannot be reconciled.
//
// Two detections with different magnitudes at the same JD both survive. That
// can happen when two instruments observe in the same exposure window and is
// deliberate: collapsing them would discard a real measurement.
// The input is not modified; row order follows first appearance.
func DedupeLightcurve(lc *schema.Lightcurve) *schema.Lightcurve {
	if lc == nil {
		return nil
	}

	// Group rows by JD, keeping the encounter order of both groups and rows.
	var order []float64
	groups := make(map[float64][]schema.LightcurveRow)
	for _, row := range lc.Rows {
		if _, ok := groups[row.JDObs]; !ok {
			order = append(order, row.JDObs)
		}
		groups[row.JDObs] = append(groups[row.JDObs], row)
	}

	deduped := *lc
	deduped.Rows = make([]schema.LightcurveRow, 0, len(order))
	for _, jd := range order {
		deduped.Rows = append(deduped.Rows, pickRows(groups[jd])...)
	}
	return &deduped
}

// pickRows applies the per-JD policy to one group of rows.
func pickRows(rows []schema.LightcurveRow) []schema.LightcurveRow {
	if len(rows) == 1 {
		return rows
	}

	hasDetection := false
	for _, row := range rows {
		if row.IsDetection() {
			hasDetection = true
			break
		}
	}

	if !hasDetection {
		for _, row := range rows[1:] {
			if row.MagPSF != rows[0].MagPSF {
				return nil
			}
		}
		return rows[:1]
	}

	var kept []schema.LightcurveRow
	seenMags := make(map[float64]struct{})
	for _, row := range rows {
		if !row.IsDetection() {
			continue
		}
		if _, ok := seenMags[row.MagPSF]; ok {
			continue
		}
		seenMags[row.MagPSF] = struct{}{}
		kept = append(kept, row)
	}
	return kept
}

// BuildFitTable converts a deduplicated lightcurve into a table consumable by
// photometric-fitting tools. Fluxes are in counts for a fixed zeropoint of
// 25: flux = 10^(-0.4 (mag - zp)). Non-detections contribute zero flux with a
// 5-sigma upper-limit error derived from the limiting magnitude. Rows whose
// instrument and filter pair has no registered bandpass name are dropped with
// a warning, since the fitter cannot use them.
func BuildFitTable(lc *schema.Lightcurve) *schema.FitTable {
	table := &schema.FitTable{Name: lc.Name, Redshift: lc.Redshift}

	dropped := 0
	for _, row := range lc.Rows {
		band, ok := schema.DefaultBandpasses[[2]string{row.Instrument, row.Filter}]
		if !ok {
			dropped++
			continue
		}

		point := schema.FitPoint{
			MJD:   row.JDObs - jdToMJDOffset,
			Band:  band,
			ZP:    schema.FitZeropoint,
			ZPSys: fitZPSys,
		}
		if row.IsDetection() {
			flux := math.Pow(10, -0.4*(row.MagPSF-schema.FitZeropoint))
			point.Flux = flux
			point.FluxErr = flux * 0.4 * math.Ln10 * row.SigmaMagPSF
		} else {
			point.Flux = 0
			point.FluxErr = math.Pow(10, -0.4*(row.LimMag-schema.FitZeropoint)) / 5
		}
		table.Points = append(table.Points, point)
	}

	if dropped > 0 {
		contract.LogWarn(fmt.Sprintf("fitting table for %s", lc.Name),
			fmt.Errorf("%d rows dropped: no bandpass registered for their instrument and filter", dropped))
	}
	return table
}

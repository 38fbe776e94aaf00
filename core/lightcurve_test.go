package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthlab/marshalgo/schema"
)

func photRow(jd, mag float64) schema.LightcurveRow {
	return schema.LightcurveRow{
		JDObs:       jd,
		Filter:      "r",
		Instrument:  "P48+ZTF",
		MagPSF:      mag,
		SigmaMagPSF: 0.1,
		LimMag:      20.5,
	}
}

func curveWith(rows ...schema.LightcurveRow) *schema.Lightcurve {
	return &schema.Lightcurve{Name: "ZTF20aaelulu", Rows: rows}
}

func TestDedupeLightcurveSameMagnitudeCollapses(t *testing.T) {
	lc := DedupeLightcurve(curveWith(photRow(1, 15), photRow(1, 15)))
	require.Len(t, lc.Rows, 1)
	assert.Equal(t, 15.0, lc.Rows[0].MagPSF)
}

func TestDedupeLightcurveDetectionWinsOverLimit(t *testing.T) {
	lc := DedupeLightcurve(curveWith(photRow(2, 99), photRow(2, 18)))
	require.Len(t, lc.Rows, 1)
	assert.Equal(t, 18.0, lc.Rows[0].MagPSF)
}

func TestDedupeLightcurveDistinctDetectionsKept(t *testing.T) {
	// Two instruments can report different magnitudes for the same exposure
	// window. Both rows survive.
	lc := DedupeLightcurve(curveWith(photRow(3, 17), photRow(3, 19)))
	require.Len(t, lc.Rows, 2)
	assert.Equal(t, 17.0, lc.Rows[0].MagPSF)
	assert.Equal(t, 19.0, lc.Rows[1].MagPSF)
}

func TestDedupeLightcurveIdenticalLimitsCollapse(t *testing.T) {
	lc := DedupeLightcurve(curveWith(photRow(4, 99), photRow(4, 99)))
	require.Len(t, lc.Rows, 1)
	assert.Equal(t, 99.0, lc.Rows[0].MagPSF)
}

func TestDedupeLightcurveConflictingLimitsDropped(t *testing.T) {
	// Duplicate limits that disagree on magnitude give no usable upper limit
	// for that epoch. The whole group goes.
	lc := DedupeLightcurve(curveWith(photRow(2458300.5, 99), photRow(2458300.5, 98)))
	assert.Empty(t, lc.Rows)

	// A detection at another JD is unaffected.
	lc = DedupeLightcurve(curveWith(
		photRow(2458300.5, 99), photRow(2458300.5, 98),
		photRow(2458301.5, 18),
	))
	require.Len(t, lc.Rows, 1)
	assert.Equal(t, 18.0, lc.Rows[0].MagPSF)
}

func TestDedupeLightcurveMixedCurve(t *testing.T) {
	lc := DedupeLightcurve(curveWith(
		photRow(1, 15), photRow(1, 15), // collapse
		photRow(2, 99), photRow(2, 18), // detection wins
		photRow(3, 17), photRow(3, 19), // both kept
		photRow(5, 20.1), // untouched
	))

	mags := make([]float64, 0, len(lc.Rows))
	for _, row := range lc.Rows {
		mags = append(mags, row.MagPSF)
	}
	assert.Equal(t, []float64{15, 18, 17, 19, 20.1}, mags)
}

func TestDedupeLightcurvePreservesMetadata(t *testing.T) {
	z := 0.05
	in := curveWith(photRow(1, 15))
	in.RA, in.Dec, in.Redshift, in.Classification = 31.5, -12.25, &z, "SN Ia"

	out := DedupeLightcurve(in)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.RA, out.RA)
	assert.Equal(t, in.Dec, out.Dec)
	assert.Equal(t, in.Redshift, out.Redshift)
	assert.Equal(t, in.Classification, out.Classification)
}

func TestDedupeLightcurveNil(t *testing.T) {
	assert.Nil(t, DedupeLightcurve(nil))
}

func TestBuildFitTableDetection(t *testing.T) {
	row := photRow(2458300.5, 18)
	table := BuildFitTable(curveWith(row))
	require.Len(t, table.Points, 1)

	point := table.Points[0]
	assert.Equal(t, "p48r", point.Band)
	assert.InDelta(t, 58300.0, point.MJD, 1e-9)
	assert.Equal(t, schema.FitZeropoint, point.ZP)
	assert.Equal(t, "ab", point.ZPSys)

	wantFlux := math.Pow(10, -0.4*(18-schema.FitZeropoint))
	assert.InDelta(t, wantFlux, point.Flux, 1e-9)
	assert.InDelta(t, wantFlux*0.4*math.Ln10*0.1, point.FluxErr, 1e-9)
}

func TestBuildFitTableUpperLimit(t *testing.T) {
	table := BuildFitTable(curveWith(photRow(2458301.5, 99)))
	require.Len(t, table.Points, 1)

	point := table.Points[0]
	assert.Zero(t, point.Flux)
	assert.InDelta(t, math.Pow(10, -0.4*(20.5-schema.FitZeropoint))/5, point.FluxErr, 1e-9)
}

func TestBuildFitTableDropsUnmappedBandpass(t *testing.T) {
	unmapped := photRow(2458302.5, 18)
	unmapped.Instrument = "LT+IOO"

	table := BuildFitTable(curveWith(photRow(2458300.5, 18), unmapped))
	assert.Len(t, table.Points, 1)
}

func TestBuildFitTableCarriesRedshift(t *testing.T) {
	z := 0.081
	lc := curveWith(photRow(2458300.5, 18))
	lc.Redshift = &z

	table := BuildFitTable(lc)
	assert.Equal(t, lc.Name, table.Name)
	require.NotNil(t, table.Redshift)
	assert.Equal(t, z, *table.Redshift)
}

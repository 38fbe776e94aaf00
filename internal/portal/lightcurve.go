package portal

import (
	"encoding/csv"
	"errors"
	"strconv"
	"strings"

	"github.com/growthlab/marshalgo/schema"
)

// lightcurveTableMarker opens the photometry table inside the print_lc.cgi
// HTML page. Everything before the last occurrence is page chrome.
const lightcurveTableMarker = "<table border=0 width=850>"

// ParseLightcurveHTML extracts the photometry rows from a print_lc.cgi page.
// The page embeds a CSV table with <br> line separators; rows that cannot be
// parsed are dropped instead of failing the whole lightcurve, since the
// portal is known to emit the occasional malformed row.
func ParseLightcurveHTML(name string, body []byte) (*schema.Lightcurve, error) {
	text := string(body)
	idx := strings.LastIndex(text, lightcurveTableMarker)
	if idx < 0 {
		return nil, &ParseError{Endpoint: EndpointPrintLightcurve, Err: errors.New("photometry table not found in response")}
	}
	text = text[idx+len(lightcurveTableMarker):]

	// Trailing page markup after the table is not part of the CSV.
	if end := strings.Index(text, "</table>"); end >= 0 {
		text = text[:end]
	}

	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, "\n", "")
	lines := strings.Split(text, "<br>")

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Endpoint: EndpointPrintLightcurve, Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Endpoint: EndpointPrintLightcurve, Err: errors.New("empty photometry table")}
	}

	cols := headerIndex(records[0])
	lc := &schema.Lightcurve{Name: name}
	for _, rec := range records[1:] {
		row, ok := parseLightcurveRow(rec, cols)
		if !ok {
			continue
		}
		lc.Rows = append(lc.Rows, row)
	}
	return lc, nil
}

// headerIndex maps lower-cased column names to their positions.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

// parseLightcurveRow converts one CSV record into a LightcurveRow. A row
// without a usable jdobs or magpsf carries no information and is dropped.
func parseLightcurveRow(rec []string, cols map[string]int) (schema.LightcurveRow, bool) {
	var row schema.LightcurveRow

	jd, ok := floatField(rec, cols, "jdobs")
	if !ok {
		return row, false
	}
	mag, ok := floatField(rec, cols, "magpsf")
	if !ok {
		return row, false
	}

	row.JDObs = jd
	row.MagPSF = mag
	row.SigmaMagPSF, _ = floatField(rec, cols, "sigmamagpsf")
	row.LimMag, _ = floatField(rec, cols, "limmag")
	row.Date = stringField(rec, cols, "date")
	row.Filter = stringField(rec, cols, "filter")
	row.Instrument = stringField(rec, cols, "instrument")
	row.IsDiffPos = stringField(rec, cols, "isdiffpos")
	row.RefSys = stringField(rec, cols, "refsys")
	return row, true
}

func stringField(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.Trim(rec[i], `"`)
}

func floatField(rec []string, cols map[string]int, name string) (float64, bool) {
	s := stringField(rec, cols, name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

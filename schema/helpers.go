package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID returns the stable identifier of a record: "name" for saved sources,
// falling back to "candid" and then "id" for scanning-page candidates.
// Returns "" when no identifier field is present.
func (r Record) ID() string {
	for _, key := range []string{"name", "candid", "id"} {
		if v, ok := r[key]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// String returns the value of key as a string, or "" if absent.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

// Float returns the value of key as a float64. The Marshal serialises
// numbers inconsistently, so numeric strings are parsed as well.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns the value of key as an int.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Int64 returns the value of key as an int64 without a float64 round
// trip. Candidate IDs are 18-digit integers that exceed the 53-bit
// float mantissa, so they must stay exact end to end.
func (r Record) Int64(key string) (int64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// stringify renders a scalar value without the trailing ".000000" that
// fmt would add to whole floats coming out of a JSON decode.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

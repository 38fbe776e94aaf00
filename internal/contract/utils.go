package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/growthlab/marshalgo/schema"
)

// Photometry label constants.
const (
	DetectionValue  = "Detection" // Real flux measurement
	UpperLimitValue = "Limit"     // Non-detection upper limit
	SavedValue      = "Saved"     // Candidate already saved to the program
	CandidateValue  = "Candidate" // Unsaved scanning-page candidate
)

// Color variables for console output.
var (
	DetectionColor  = color.New(color.FgGreen, color.Bold) // detectionColor marks real measurements.
	UpperLimitColor = color.New(color.FgYellow)            // upperLimitColor marks non-detections.
	SavedColor      = color.New(color.FgCyan, color.Bold)  // savedColor marks sources already in the program.
	CandidateColor  = color.New(color.FgMagenta)           // candidateColor marks unsaved candidates.
)

// GetPlainRowLabel returns a plain text label for a photometry row based on
// the non-detection sentinel magnitude. This is the core logic used for
// CSV, JSON, and table printing.
func GetPlainRowLabel(mag float64) string {
	if mag < schema.NonDetectionMag {
		return DetectionValue
	}
	return UpperLimitValue
}

// GetColorRowLabel returns a colored text label for console output (table).
// It uses GetPlainRowLabel to determine the string, and then applies the appropriate color.
func GetColorRowLabel(mag float64) string {
	text := GetPlainRowLabel(mag)
	if text == DetectionValue {
		return DetectionColor.Sprint(text)
	}
	return UpperLimitColor.Sprint(text)
}

// GetPlainSavedLabel returns a plain text label for a scanning-page record.
func GetPlainSavedLabel(saved bool) string {
	if saved {
		return SavedValue
	}
	return CandidateValue
}

// GetColorSavedLabel returns a colored text label for a scanning-page record.
func GetColorSavedLabel(saved bool) string {
	if saved {
		return SavedColor.Sprint(SavedValue)
	}
	return CandidateColor.Sprint(CandidateValue)
}

// SelectOutputFile returns the appropriate file handle for output, based on the
// provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// TruncatePath truncates a file path or source name to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cached portal responses.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".marshalgo_cache.db"
	}
	return filepath.Join(homeDir, ".marshalgo_cache.db")
}

// GetFetchLogDBFilePath returns the path to the SQLite DB file for fetch-run records.
func GetFetchLogDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".marshalgo_fetchlog.db"
	}
	return filepath.Join(homeDir, ".marshalgo_fetchlog.db")
}

package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatBoth = "both"
)

// Run-mode suffixes used in default file names.
const (
	SuffixSingle = "single"
	SuffixBatch  = "batch"
)

const filePrefix = "yellowpages_leads"

// ValidFormat reports whether format is one of the supported output formats.
func ValidFormat(format string) bool {
	switch format {
	case FormatJSON, FormatCSV, FormatBoth:
		return true
	default:
		return false
	}
}

// Extensions lists the file extensions a format produces, JSON first.
func Extensions(format string) []string {
	switch format {
	case FormatJSON:
		return []string{FormatJSON}
	case FormatCSV:
		return []string{FormatCSV}
	case FormatBoth:
		return []string{FormatJSON, FormatCSV}
	default:
		return nil
	}
}

// DefaultPath builds {dir}/yellowpages_leads[_{suffix}]_{YYYYMMDD_HHMMSS}.{ext}
// using the UTC time of now.
func DefaultPath(dir, ext, suffix string, now time.Time) string {
	name := filePrefix
	if suffix != "" {
		name += "_" + suffix
	}
	name = fmt.Sprintf("%s_%s.%s", name, now.UTC().Format("20060102_150405"), ext)
	return filepath.Join(dir, name)
}

// ResolvePath picks the file for one extension. An explicit output path is
// used when its extension matches, ignoring case; otherwise the default path
// is generated.
func ResolvePath(output, dir, ext, suffix string, now time.Time) string {
	if output != "" && strings.HasSuffix(strings.ToLower(output), "."+ext) {
		return output
	}
	return DefaultPath(dir, ext, suffix, now)
}

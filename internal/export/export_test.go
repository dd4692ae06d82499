package export

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/yellowpages-leads/internal/leads"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func sampleLeads() []leads.Lead {
	return []leads.Lead{
		{
			BusinessName: "Café Müller",
			Category:     strPtr("Coffee & Tea"),
			City:         strPtr("Austin"),
			State:        strPtr("TX"),
			ZipCode:      strPtr("73301"),
			PhoneNumber:  strPtr("(512) 555-0100"),
			Website:      strPtr("https://cafe.example.com/?a=1&b=2"),
			Rating:       floatPtr(4),
		},
		{
			BusinessName: "Smith, Jones & Co",
			Address:      strPtr("1 \"Quoted\" Ave"),
		},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 -- test reads from the controlled temp directory.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "leads.json")
	require.NoError(t, WriteJSON(path, sampleLeads()))

	raw := readFile(t, path)
	assert.Contains(t, raw, "Café Müller", "non-ASCII must not be escaped")
	assert.Contains(t, raw, "?a=1&b=2")
	assert.Contains(t, raw, "\n  {\n    \"business_name\"")
	assert.NotContains(t, raw, "_search_keyword")

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Len(t, decoded, 2)
	assert.Nil(t, decoded[1]["category"])
	assert.Contains(t, decoded[1], "category", "unset fields serialize as null")
	assert.InDelta(t, 4.0, decoded[0]["rating"], 1e-9)
	assert.Contains(t, raw, `"rating": 4.0`, "whole ratings match the CSV rendering")
}

func TestWriteJSONSurvivesNonFiniteRating(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	path := filepath.Join(t.TempDir(), "nan.json")
	require.NoError(t, WriteJSON(path, []leads.Lead{{BusinessName: "Odd Listing", Rating: &nan}}))
	assert.Contains(t, readFile(t, path), `"rating": null`)
}

func TestWriteJSONEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, in := range [][]leads.Lead{nil, {}} {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, WriteJSON(path, in))
		assert.Equal(t, "[]", strings.TrimSpace(readFile(t, path)))
	}
}

func TestWriteJSONKeepsProvenance(t *testing.T) {
	t.Parallel()

	lead := leads.Lead{BusinessName: "A"}.WithProvenance("plumbers", "Austin, TX")
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, WriteJSON(path, []leads.Lead{lead}))

	raw := readFile(t, path)
	assert.Contains(t, raw, `"_search_keyword": "plumbers"`)
	assert.Contains(t, raw, `"_search_location": "Austin, TX"`)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "leads.csv")
	written, err := WriteCSV(path, sampleLeads())
	require.NoError(t, err)
	assert.True(t, written)

	rows, err := csv.NewReader(strings.NewReader(readFile(t, path))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"address", "business_name", "category", "city", "email",
		"phone_number", "rating", "state", "website", "zip_code",
	}, rows[0])
	assert.Equal(t, []string{
		"", "Café Müller", "Coffee & Tea", "Austin", "",
		"(512) 555-0100", "4.0", "TX", "https://cafe.example.com/?a=1&b=2", "73301",
	}, rows[1])
	assert.Equal(t, "1 \"Quoted\" Ave", rows[2][0])
	assert.Equal(t, "Smith, Jones & Co", rows[2][1])
}

func TestWriteCSVHeaderIncludesProvenance(t *testing.T) {
	t.Parallel()

	records := []leads.Lead{
		leads.Lead{BusinessName: "A"}.WithProvenance("plumbers", "Austin, TX"),
		leads.Lead{BusinessName: "B"}.WithProvenance("dentists", "Reno, NV"),
	}
	path := filepath.Join(t.TempDir(), "batch.csv")
	_, err := WriteCSV(path, records)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(readFile(t, path))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"_search_keyword", "_search_location"}, rows[0][:2])
	assert.Equal(t, []string{"dentists", "Reno, NV"}, rows[2][:2])
}

func TestWriteCSVEmptyWritesNothing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "none.csv")
	written, err := WriteCSV(path, nil)
	require.NoError(t, err)
	assert.False(t, written)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 9, 7, 5, 3, 0, time.FixedZone("PST", -8*3600))
	assert.Equal(t, filepath.Join("data", "yellowpages_leads_batch_20240309_150503.csv"),
		DefaultPath("data", "csv", SuffixBatch, now))
	assert.Equal(t, filepath.Join("out", "yellowpages_leads_20240309_150503.json"),
		DefaultPath("out", "json", "", now))
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name   string
		output string
		ext    string
		want   string
	}{
		{name: "matching extension", output: "leads.json", ext: "json", want: "leads.json"},
		{name: "case insensitive", output: "LEADS.CSV", ext: "csv", want: "LEADS.CSV"},
		{name: "mismatched extension", output: "leads.json", ext: "csv", want: filepath.Join("data", "yellowpages_leads_single_20240102_030405.csv")},
		{name: "no output", output: "", ext: "json", want: filepath.Join("data", "yellowpages_leads_single_20240102_030405.json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolvePath(tt.output, "data", tt.ext, SuffixSingle, now))
		})
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidFormat(FormatJSON))
	assert.True(t, ValidFormat(FormatBoth))
	assert.False(t, ValidFormat("xml"))
	assert.Equal(t, []string{"json", "csv"}, Extensions(FormatBoth))
	assert.Nil(t, Extensions("xml"))
}

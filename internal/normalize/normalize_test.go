package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  *string
	}{
		{name: "empty", input: "", want: nil},
		{name: "spaces only", input: "   ", want: nil},
		{name: "mixed whitespace only", input: " \t\n\r ", want: nil},
		{name: "trims ends", input: "  Joe's Pizza  ", want: ptr("Joe's Pizza")},
		{name: "collapses interior runs", input: "Joe's \t\n  Pizza", want: ptr("Joe's Pizza")},
		{name: "non breaking space", input: "Joe's\u00a0Pizza", want: ptr("Joe's Pizza")},
		{name: "keeps unicode", input: " Café  Olé ", want: ptr("Café Olé")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CleanText(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"a  b", "\ta\nb\t", " x ", "single", "  many   words \n here  "}
	for _, in := range inputs {
		once := CleanText(in)
		require.NotNil(t, once, in)
		twice := CleanText(*once)
		require.NotNil(t, twice, in)
		assert.Equal(t, *once, *twice)
		assert.NotContains(t, *once, "  ")
		assert.Equal(t, strings.TrimSpace(*once), *once)
	}
}

func FuzzCleanText(f *testing.F) {
	for _, seed := range []string{"", " ", "a b", "\t\na  b\r\n", "Café Olé"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		got := CleanText(in)
		if got == nil {
			return
		}
		if *got == "" {
			t.Fatalf("CleanText(%q) returned empty string", in)
		}
		again := CleanText(*got)
		if again == nil || *again != *got {
			t.Fatalf("CleanText not idempotent for %q", in)
		}
	})
}

func TestParsePhone(t *testing.T) {
	t.Parallel()

	got := ParsePhone("  (213)  555-0100 ")
	require.NotNil(t, got)
	assert.Equal(t, "(213) 555-0100", *got)
	assert.Nil(t, ParsePhone(" "))
}

func TestParseLocality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		city  *string
		state *string
		zip   *string
	}{
		{name: "full", input: "Los Angeles, CA 90001", city: ptr("Los Angeles"), state: ptr("CA"), zip: ptr("90001")},
		{name: "no comma", input: "CA 90001", state: ptr("CA"), zip: ptr("90001")},
		{name: "empty", input: ""},
		{name: "whitespace", input: "   "},
		{name: "city only", input: "Austin,", city: ptr("Austin")},
		{name: "state only", input: "Austin, TX", city: ptr("Austin"), state: ptr("TX")},
		{name: "extra tokens ignored", input: "Boise, ID 83702 USA", city: ptr("Boise"), state: ptr("ID"), zip: ptr("83702")},
		{name: "splits on first comma only", input: "Washington, DC, 20001", city: ptr("Washington"), state: ptr("DC,"), zip: ptr("20001")},
		{name: "messy whitespace", input: "  New   York ,\n NY\t10001 ", city: ptr("New York"), state: ptr("NY"), zip: ptr("10001")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseLocality(tt.input)
			assertOptional(t, "city", tt.city, got.City)
			assertOptional(t, "state", tt.state, got.State)
			assertOptional(t, "zip", tt.zip, got.ZipCode)
		})
	}
}

type fakeNode struct {
	attrs map[string]string
	text  string
}

func (n fakeNode) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n fakeNode) Text() string { return n.text }

func TestParseRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node RatingSource
		want *float64
	}{
		{name: "nil source", node: nil, want: nil},
		{name: "attribute", node: fakeNode{attrs: map[string]string{RatingAttr: "4.5"}}, want: fptr(4.5)},
		{name: "attribute with spaces", node: fakeNode{attrs: map[string]string{RatingAttr: " 3 "}}, want: fptr(3)},
		{name: "text fallback", node: fakeNode{text: "Rated 4.5 stars"}, want: fptr(4.5)},
		{name: "bad attribute falls back to text", node: fakeNode{attrs: map[string]string{RatingAttr: "four"}, text: "3.0 of 5"}, want: fptr(3)},
		{name: "empty attribute falls back to text", node: fakeNode{attrs: map[string]string{RatingAttr: ""}, text: "2.5"}, want: fptr(2.5)},
		{name: "first numeric token wins", node: fakeNode{text: "(12 reviews) 4.0"}, want: fptr(4)},
		{name: "no rating", node: fakeNode{text: "no rating"}, want: nil},
		{name: "empty text", node: fakeNode{text: "  "}, want: nil},
		{name: "hex is not a rating", node: fakeNode{text: "0x1p-2"}, want: nil},
		{name: "NaN token skipped", node: fakeNode{text: "NaN 4.5"}, want: fptr(4.5)},
		{name: "infinity is not a rating", node: fakeNode{text: "Infinity"}, want: nil},
		{name: "NaN attribute falls back to text", node: fakeNode{attrs: map[string]string{RatingAttr: "nan"}, text: "-Inf reviews"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseRating(tt.node)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func assertOptional(t *testing.T, field string, want, got *string) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got, field)
		return
	}
	require.NotNil(t, got, field)
	assert.Equal(t, *want, *got, field)
}

func ptr(s string) *string { return &s }

func fptr(f float64) *float64 { return &f }

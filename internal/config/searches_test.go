package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/yellowpages-leads/internal/leads"
)

func TestLoadSearches(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "inputs.json", `{
		"searches": [
			{"keyword": "plumbers", "location": "Los Angeles, CA", "pages": 2},
			{"keyword": "dentists", "location": "Austin, TX"},
			{"keyword": "", "location": "Reno, NV", "pages": 3},
			{"location": "Boise, ID"},
			{"keyword": "bakers", "location": "Omaha, NE", "pages": 0},
			{"keyword": "   ", "location": "Tampa, FL"},
			{"keyword": " roofers ", "location": "Boise, ID "}
		]
	}`)

	core, logs := observer.New(zapcore.WarnLevel)
	got, err := LoadSearches(path, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, []leads.SearchQuery{
		{Keyword: "plumbers", Location: "Los Angeles, CA", Pages: 2},
		{Keyword: "dentists", Location: "Austin, TX", Pages: 1},
		{Keyword: "bakers", Location: "Omaha, NE", Pages: 0},
		{Keyword: " roofers ", Location: "Boise, ID ", Pages: 1},
	}, got)
	assert.Equal(t, 3, logs.FilterMessage("Skipping search due to missing keyword or location").Len())
}

func TestLoadSearchesWithoutKey(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "inputs.json", `{"other": true}`)
	got, err := LoadSearches(path, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSearchesErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadSearches(filepath.Join(t.TempDir(), "absent.json"), nil)
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		_, err := LoadSearches(writeFile(t, "bad.json", `{"searches": [`), nil)
		assert.Error(t, err)
	})

	t.Run("not a list", func(t *testing.T) {
		t.Parallel()
		_, err := LoadSearches(writeFile(t, "obj.json", `{"searches": {"keyword": "plumbers"}}`), nil)
		assert.ErrorIs(t, err, ErrSearchesNotList)
	})
}

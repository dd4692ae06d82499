package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JakeFAU/yellowpages-leads/internal/leads"
)

// ErrSearchesNotList is returned when the "searches" key is not an array.
var ErrSearchesNotList = errors.New("'searches' must be a list")

type searchEntry struct {
	Keyword  string `mapstructure:"keyword"`
	Location string `mapstructure:"location"`
	Pages    *int   `mapstructure:"pages"`
}

// LoadSearches reads the batch file at path: a JSON object whose "searches"
// array lists {keyword, location, pages} entries. Entries without a keyword
// or location are skipped with a warning; a missing pages value means one
// page. Keyword and location are kept exactly as written so batch
// provenance matches the input file. Unreadable files and malformed documents are errors.
func LoadSearches(path string, logger *zap.Logger) ([]leads.SearchQuery, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read input config %s: %w", path, err)
	}

	raw := v.Get("searches")
	if raw == nil {
		logger.Warn("Input config has no searches", zap.String("path", path))
		return []leads.SearchQuery{}, nil
	}
	if _, ok := raw.([]any); !ok {
		return nil, fmt.Errorf("input config %s: %w", path, ErrSearchesNotList)
	}

	var entries []searchEntry
	if err := v.UnmarshalKey("searches", &entries); err != nil {
		return nil, fmt.Errorf("decode searches in %s: %w", path, err)
	}
	logger.Info("Loaded search definitions", zap.String("path", path), zap.Int("count", len(entries)))

	queries := make([]leads.SearchQuery, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Keyword) == "" || strings.TrimSpace(e.Location) == "" {
			logger.Warn("Skipping search due to missing keyword or location",
				zap.Int("index", i+1),
				zap.String("keyword", e.Keyword),
				zap.String("location", e.Location),
			)
			continue
		}
		pages := 1
		if e.Pages != nil {
			pages = *e.Pages
		}
		queries = append(queries, leads.SearchQuery{Keyword: e.Keyword, Location: e.Location, Pages: pages})
	}
	return queries, nil
}

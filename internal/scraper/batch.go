package scraper

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/yellowpages-leads/internal/leads"
)

// RunBatch runs every query and concatenates the leads in query order. Each
// lead is annotated with the keyword and location that produced it.
//
// With concurrency <= 1 the queries run one after another. Larger values run
// up to that many queries at once; the returned order is unchanged.
func (s *Scraper) RunBatch(ctx context.Context, queries []leads.SearchQuery, concurrency int) []leads.Lead {
	if concurrency <= 1 {
		all := make([]leads.Lead, 0)
		for i, q := range queries {
			all = append(all, s.runBatchEntry(ctx, i, len(queries), q)...)
			s.logger.Info("Total leads accumulated so far", zap.Int("count", len(all)))
		}
		return all
	}

	perQuery := make([][]leads.Lead, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, q := range queries {
		g.Go(func() error {
			perQuery[i] = s.runBatchEntry(gctx, i, len(queries), q)
			return nil
		})
	}
	// Searches never return errors; Wait only joins the goroutines.
	_ = g.Wait()

	all := make([]leads.Lead, 0)
	for _, found := range perQuery {
		all = append(all, found...)
	}
	s.logger.Info("Total leads accumulated", zap.Int("count", len(all)))
	return all
}

func (s *Scraper) runBatchEntry(ctx context.Context, index, total int, q leads.SearchQuery) []leads.Lead {
	s.logger.Info("Batch search",
		zap.Int("index", index+1),
		zap.Int("total", total),
		zap.String("keyword", q.Keyword),
		zap.String("location", q.Location),
		zap.Int("pages", q.Pages),
	)
	found := s.Search(ctx, q)
	for i := range found {
		found[i] = found[i].WithProvenance(q.Keyword, q.Location)
	}
	return found
}

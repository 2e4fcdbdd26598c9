package rssnews

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/pkg/models"
	"github.com/kfinlab/finharvest/pkg/utils"
)

// ---- MarketNews fetcher ----
// Aggregates recent headlines across all configured feeds, newest first.

type marketNewsFetcher struct {
	provider.BaseFetcher
	sources []Source
	parser  *gofeed.Parser
}

func newMarketNewsFetcher(sources []Source) *marketNewsFetcher {
	return &marketNewsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelMarketNews,
			"Aggregate recent market news from Korean financial RSS feeds",
			nil,
			[]string{provider.ParamLimit, provider.ParamQuery},
			10*time.Minute, 2, time.Second,
		),
		sources: sources,
		parser:  gofeed.NewParser(),
	}
}

func (f *marketNewsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	limit := 0
	if v := params[provider.ParamLimit]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid limit %q", v)
		}
		limit = n
	}

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return &provider.FetchResult{Data: cached, FetchedAt: time.Now(), Cached: true}, nil
	}

	var all []models.Article
	for _, src := range f.sources {
		articles, err := f.fetchFeed(ctx, src)
		if err != nil {
			// Non-critical: skip failed sources.
			continue
		}
		all = append(all, articles...)
	}

	all = filterByQuery(all, params[provider.ParamQuery])

	sort.Slice(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	f.CacheSet(cacheKey, all)
	return &provider.FetchResult{Data: all, FetchedAt: time.Now()}, nil
}

func (f *marketNewsFetcher) fetchFeed(ctx context.Context, src Source) ([]models.Article, error) {
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	feed, err := f.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.Article{
			Link:        item.Link,
			Title:       utils.CleanHTML(item.Title),
			Description: utils.CleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = item.PublishedParsed.In(utils.KST)
		}
		articles = append(articles, a)
	}
	return articles, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// filterByQuery keeps articles whose title or description mentions the
// query. An empty query keeps everything.
func filterByQuery(articles []models.Article, query string) []models.Article {
	if query == "" {
		return articles
	}
	filtered := articles[:0]
	for _, a := range articles {
		if containsFold(a.Title, query) || containsFold(a.Description, query) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

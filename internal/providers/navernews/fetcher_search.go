package navernews

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/pkg/models"
	"github.com/kfinlab/finharvest/pkg/utils"
)

// pubDateLayout matches Naver's pubDate field, e.g.
// "Mon, 15 Jan 2024 09:30:00 +0900".
const pubDateLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// ---- NewsSearch fetcher ----
// Fetches one page of news-search results. Pagination is the caller's
// job: pass start=1, 101, 201, ... up to MaxStart.

type newsSearchFetcher struct {
	provider.BaseFetcher
}

func newNewsSearchFetcher() *newsSearchFetcher {
	return &newsSearchFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelNewsSearch,
			"Search Naver news for a query, one page of up to 100 results",
			[]string{provider.ParamQuery},
			[]string{provider.ParamStart, provider.ParamLimit, provider.ParamSortBy, provider.ParamStartDate, provider.ParamEndDate},
			5*time.Minute, 8, time.Second,
		),
	}
}

func (f *newsSearchFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	query := params[provider.ParamQuery]

	start := 1
	if v := params[provider.ParamStart]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxStart {
			return nil, fmt.Errorf("invalid start %q", v)
		}
		start = n
	}
	display := PageSize
	if v := params[provider.ParamLimit]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > PageSize {
			return nil, fmt.Errorf("invalid limit %q", v)
		}
		display = n
	}
	sortBy := params[provider.ParamSortBy]
	if sortBy == "" {
		sortBy = "sim"
	}

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?query=%s&display=%d&start=%d&sort=%s",
		baseURL, url.QueryEscape(query), display, start, sortBy)

	var resp naverSearchResponse
	if err := fetchNaverJSON(ctx, u, params[paramInjectedID], params[paramInjectedSecret], &resp); err != nil {
		return nil, fmt.Errorf("navernews search %q: %w", query, err)
	}

	articles := convertItems(resp.Items, params[provider.ParamStartDate], params[provider.ParamEndDate])

	f.CacheSet(cacheKey, articles)
	return newResult(articles), nil
}

// convertItems turns raw search hits into articles, dropping anything
// with an unparsable date or outside the optional date window.
func convertItems(items []naverItem, startDate, endDate string) []models.Article {
	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		published, err := time.Parse(pubDateLayout, item.PubDate)
		if err != nil {
			continue
		}
		published = published.In(utils.KST)
		if !utils.WithinDateRange(published, startDate, endDate) {
			continue
		}

		link := item.OriginalLink
		if link == "" {
			link = item.Link
		}
		articles = append(articles, models.Article{
			Link:        link,
			PublishedAt: published,
			Title:       utils.CleanHTML(item.Title),
			Description: utils.CleanHTML(item.Description),
		})
	}
	return articles
}

// Package newsscan implements the news-scanning pipeline: for every
// pending company it searches the news API with name variations, pages
// through results with session-level link dedupe, prefilters on title
// and description, fetches promising article bodies concurrently, and
// caches keyword-matched articles in the store.
package newsscan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kfinlab/finharvest/internal/infra"
	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/internal/providers/navernews"
	"github.com/kfinlab/finharvest/internal/store"
	"github.com/kfinlab/finharvest/pkg/models"
)

// corpSuffixRe strips the legal-entity decorations companies carry in
// the directory but rarely in headlines.
var corpSuffixRe = regexp.MustCompile(`주식회사$|㈜|주식회사|（주）|\(주\)`)

// Options configures a scanning run.
type Options struct {
	StartDate string // inclusive, YYYY-MM-DD
	EndDate   string // inclusive, YYYY-MM-DD

	MaxArticles   int // per-company cap across all variations
	MaxVariations int // query variations tried per company

	Concurrency   int           // parallel body downloads
	FetchDelay    time.Duration // pacing between body downloads
	FetchTimeout  time.Duration // per-download timeout
	ContentMaxLen int           // body clamp, in runes
}

// Summary reports what a scanning run did.
type Summary struct {
	Companies int // pending companies picked up
	Completed int
	Failed    int
	Articles  int // keyword-matched articles newly cached
}

// Scanner drives the news pipeline against a provider registry and the
// collection store.
type Scanner struct {
	reg     *provider.Registry
	store   *store.Store
	fetcher *ContentFetcher
	log     *zap.Logger
	opts    Options
}

// NewScanner creates a scanner. Zero option fields get defaults
// matching the collection configuration: 2015-01-01..2024-12-31, 500
// articles, 3 variations, 20 concurrent downloads, 5000-rune bodies.
func NewScanner(reg *provider.Registry, st *store.Store, logger *zap.Logger, opts Options) *Scanner {
	if opts.StartDate == "" {
		opts.StartDate = "2015-01-01"
	}
	if opts.EndDate == "" {
		opts.EndDate = "2024-12-31"
	}
	if opts.MaxArticles == 0 {
		opts.MaxArticles = 500
	}
	if opts.MaxVariations == 0 {
		opts.MaxVariations = 3
	}
	if opts.ContentMaxLen == 0 {
		opts.ContentMaxLen = 5000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		reg:     reg,
		store:   st,
		fetcher: NewContentFetcher(opts.Concurrency, opts.FetchDelay, opts.FetchTimeout, logger),
		log:     logger,
		opts:    opts,
	}
}

// Run scans every pending company, moving each to completed or failed.
func (s *Scanner) Run(ctx context.Context) (*Summary, error) {
	pending, err := s.store.PendingCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending companies: %w", err)
	}

	summary := &Summary{Companies: len(pending)}
	s.log.Info("news scan starting", zap.Int("pending", len(pending)))

	for _, company := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		saved, err := s.scanCompany(ctx, company)
		if err != nil {
			s.log.Error("company scan failed",
				zap.String("ticker", company.Ticker),
				zap.String("name", company.Name),
				zap.Error(err))
			if uerr := s.store.UpdateStatus(ctx, company.Ticker, models.StatusFailed); uerr != nil {
				return summary, uerr
			}
			summary.Failed++
			continue
		}

		if err := s.store.UpdateStatus(ctx, company.Ticker, models.StatusCompleted); err != nil {
			return summary, err
		}
		summary.Completed++
		summary.Articles += saved
	}

	s.log.Info("news scan finished",
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("articles", summary.Articles))
	return summary, nil
}

// scanCompany runs the full per-company flow and returns how many
// matched articles were newly cached.
func (s *Scanner) scanCompany(ctx context.Context, company models.Company) (int, error) {
	articles, err := s.searchCompany(ctx, company)
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		s.log.Info("no news found", zap.String("name", company.Name))
		return 0, nil
	}

	// Cheap prefilter before bodies are fetched.
	var candidates []models.Article
	for _, a := range articles {
		if ContainsAnyKeyword(a.Title + " " + a.Description) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		s.log.Info("no keyword candidates",
			zap.String("name", company.Name), zap.Int("searched", len(articles)))
		return 0, nil
	}
	s.log.Info("fetching article bodies",
		zap.String("name", company.Name),
		zap.Int("searched", len(articles)),
		zap.Int("candidates", len(candidates)))

	urls := make([]string, len(candidates))
	for i, a := range candidates {
		urls[i] = a.Link
	}
	bodies, err := s.fetcher.FetchAll(ctx, urls)
	if err != nil {
		return 0, err
	}

	saved := 0
	for i, a := range candidates {
		a.Ticker = company.Ticker
		a.FullContent = ExtractContent(bodies[i], a.Link, s.opts.ContentMaxLen)

		fullText := a.Title + " " + a.Description + " " + a.FullContent
		a.Matches = MatchKeywords(fullText)
		if len(a.Matches) == 0 {
			continue
		}

		inserted, err := s.store.SaveArticle(ctx, a)
		if err != nil {
			return saved, err
		}
		if inserted {
			saved++
		}
	}

	s.log.Info("company scanned",
		zap.String("name", company.Name), zap.Int("saved", saved))
	return saved, nil
}

// searchCompany pages through the news API for every query variation,
// deduplicating links within the company's session.
func (s *Scanner) searchCompany(ctx context.Context, company models.Company) ([]models.Article, error) {
	seen := make(map[string]bool)
	var articles []models.Article

	for _, query := range QueryVariations(company.Name, s.opts.MaxVariations) {
		if len(articles) >= s.opts.MaxArticles {
			break
		}

	pages:
		for start := 1; start <= navernews.MaxStart; start += navernews.PageSize {
			res, err := s.reg.Fetch(ctx, provider.ModelNewsSearch, provider.QueryParams{
				provider.ParamQuery:     query,
				provider.ParamStart:     strconv.Itoa(start),
				provider.ParamStartDate: s.opts.StartDate,
				provider.ParamEndDate:   s.opts.EndDate,
			})
			if err != nil {
				if isRateLimited(err) {
					s.log.Warn("search rate limited, backing off", zap.String("query", query))
					if !sleepCtx(ctx, time.Second) {
						return articles, ctx.Err()
					}
				} else {
					s.log.Warn("search failed", zap.String("query", query), zap.Error(err))
				}
				break pages // abandon this variation
			}

			page, ok := res.Data.([]models.Article)
			if !ok {
				return articles, fmt.Errorf("unexpected search payload %T", res.Data)
			}
			if len(page) == 0 {
				break pages
			}

			for _, a := range page {
				if seen[a.Link] {
					continue
				}
				seen[a.Link] = true
				articles = append(articles, a)
				if len(articles) >= s.opts.MaxArticles {
					break pages
				}
			}
		}
	}

	return articles, nil
}

// QueryVariations returns the search queries tried for a company name:
// the name itself plus the name with legal-entity suffixes stripped,
// capped at max.
func QueryVariations(name string, max int) []string {
	variations := []string{name}
	clean := strings.TrimSpace(corpSuffixRe.ReplaceAllString(name, ""))
	if clean != "" && clean != name && len([]rune(clean)) >= 2 {
		variations = append(variations, clean)
	}
	if max > 0 && len(variations) > max {
		variations = variations[:max]
	}
	return variations
}

// isRateLimited reports whether err is an HTTP 429 from the search API.
func isRateLimited(err error) bool {
	var httpErr *infra.ErrHTTP
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}

// sleepCtx sleeps for d, returning false if the context expired first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

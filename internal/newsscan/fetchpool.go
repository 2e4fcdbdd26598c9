package newsscan

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kfinlab/finharvest/internal/infra"
)

// ContentFetcher downloads article bodies concurrently, pacing requests
// so news sites aren't hammered. A failed or non-200 fetch yields an
// empty string rather than failing the batch.
type ContentFetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	concurrency int
	log         *zap.Logger
}

// NewContentFetcher creates a fetcher running up to concurrency
// downloads at once, starting at most one request per delay, each with
// the given timeout.
func NewContentFetcher(concurrency int, delay, timeout time.Duration, logger *zap.Logger) *ContentFetcher {
	if concurrency <= 0 {
		concurrency = 20
	}
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentFetcher{
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Every(delay), 1),
		concurrency: concurrency,
		log:         logger,
	}
}

// FetchAll downloads every URL and returns the bodies index-aligned
// with urls. Only context cancellation aborts the batch.
func (f *ContentFetcher) FetchAll(ctx context.Context, urls []string) ([]string, error) {
	bodies := make([]string, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			if err := f.limiter.Wait(ctx); err != nil {
				return err
			}
			bodies[i] = f.fetchOne(ctx, u)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return bodies, err
	}
	return bodies, nil
}

// fetchOne downloads a single page, returning "" on any failure.
func (f *ContentFetcher) fetchOne(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.log.Warn("bad article url", zap.String("url", url), zap.Error(err))
		return ""
	}
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("article fetch failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.log.Warn("article fetch rejected",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		return ""
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.Warn("article read failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	return string(data)
}

// Package rssnews implements a market-news provider backed by public
// RSS feeds from Korean financial media. It needs no credentials and
// complements the search API with market-wide headlines.
package rssnews

import (
	"context"

	"github.com/mmcdole/gofeed"

	"github.com/kfinlab/finharvest/internal/provider"
)

const providerName = "rssnews"

// Source is one configured RSS feed.
type Source struct {
	Name   string
	RSSURL string
}

// DefaultSources lists the Korean financial news RSS feeds polled for
// market news.
var DefaultSources = []Source{
	{
		Name:   "매일경제 증권",
		RSSURL: "https://www.mk.co.kr/rss/50200011/",
	},
	{
		Name:   "한국경제 증권",
		RSSURL: "https://www.hankyung.com/feed/finance",
	},
	{
		Name:   "연합뉴스 경제",
		RSSURL: "https://www.yna.co.kr/rss/economy.xml",
	},
	{
		Name:   "조선비즈 증권",
		RSSURL: "https://biz.chosun.com/arc/outboundfeeds/rss/category/stock/",
	},
}

// Provider implements provider.Provider over RSS feeds.
type Provider struct {
	provider.BaseProvider
}

// New creates an RSS news provider with the default sources.
func New() *Provider {
	return NewWithSources(DefaultSources)
}

// NewWithSources creates an RSS news provider with custom sources.
func NewWithSources(sources []Source) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Korean financial media RSS feeds - market-wide news",
			"",
			nil, // no credentials required
		),
	}
	p.RegisterFetcher(newMarketNewsFetcher(sources))
	return p
}

// Ping parses the first configured feed to verify reachability.
func (p *Provider) Ping(ctx context.Context) error {
	f := p.Fetcher(provider.ModelMarketNews).(*marketNewsFetcher)
	if len(f.sources) == 0 {
		return nil
	}
	parser := gofeed.NewParser()
	_, err := parser.ParseURLWithContext(f.sources[0].RSSURL, ctx)
	return err
}

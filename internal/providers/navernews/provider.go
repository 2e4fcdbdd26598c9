// Package navernews implements the Naver news-search data provider.
// Naver's open API serves Korean news-search results as JSON, paginated
// 100 results at a time with a hard ceiling at offset 1000.
//
// Requires a client ID and secret from developers.naver.com, sent as
// X-Naver-Client-Id / X-Naver-Client-Secret headers.
package navernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kfinlab/finharvest/internal/infra"
	"github.com/kfinlab/finharvest/internal/provider"
)

const (
	providerName = "navernews"
	baseURL      = "https://openapi.naver.com/v1/search/news.json"

	credClientID     = "client_id"
	credClientSecret = "client_secret"

	paramInjectedID     = "_naver_client_id"
	paramInjectedSecret = "_naver_client_secret"

	// PageSize is the fixed display count per search page.
	PageSize = 100
	// MaxStart is the API's highest accepted start offset. Paging from 1
	// in PageSize steps tops out at start=901.
	MaxStart = 1000
)

// Provider implements provider.Provider for the Naver search API.
type Provider struct {
	provider.BaseProvider
	clientID     string
	clientSecret string
}

// New creates a new Naver news provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Naver Open API - Korean news search",
			"https://developers.naver.com",
			[]provider.ProviderCredential{
				{
					Name:        credClientID,
					Description: "Naver application client ID",
					Required:    true,
					EnvVar:      "NAVER_CLIENT_ID",
				},
				{
					Name:        credClientSecret,
					Description: "Naver application client secret",
					Required:    true,
					EnvVar:      "NAVER_CLIENT_SECRET",
				},
			},
		),
	}

	p.RegisterFetcher(newNewsSearchFetcher())

	return p
}

// Init stores the client credentials.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.clientID = credentials[credClientID]
	p.clientSecret = credentials[credClientSecret]
	return nil
}

// Ping issues a single-result search to verify the credentials.
func (p *Provider) Ping(ctx context.Context) error {
	url := baseURL + "?query=%EC%A6%9D%EC%8B%9C&display=1"
	body, _, err := infra.DoGet(ctx, url, naverHeaders(p.clientID, p.clientSecret))
	if err != nil {
		return fmt.Errorf("navernews ping: %w", err)
	}
	body.Close()
	return nil
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the client credentials into query params.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &credInjector{inner: inner, provider: p}
}

type credInjector struct {
	inner    provider.Fetcher
	provider *Provider
}

func (w *credInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *credInjector) Description() string           { return w.inner.Description() }
func (w *credInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *credInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *credInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+2)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[paramInjectedID] = w.provider.clientID
	enriched[paramInjectedSecret] = w.provider.clientSecret
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func naverHeaders(clientID, clientSecret string) map[string]string {
	return map[string]string{
		"X-Naver-Client-Id":     clientID,
		"X-Naver-Client-Secret": clientSecret,
		"Accept":                "application/json",
	}
}

// fetchNaverJSON performs an authenticated GET and decodes the response.
func fetchNaverJSON(ctx context.Context, url, clientID, clientSecret string, dest any) error {
	body, _, err := infra.DoGet(ctx, url, naverHeaders(clientID, clientSecret))
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse Naver JSON: %w", err)
	}
	return nil
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: time.Now()}
}

func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: time.Now(), Cached: true}
}

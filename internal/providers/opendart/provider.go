// Package opendart implements the OpenDART data provider.
// OpenDART is the Korean Financial Supervisory Service's corporate
// disclosure API. It serves the full corporation directory and single
// company financial statements (all accounts) with API key authentication.
//
// Free tier: 20,000 requests/day per key.
// Docs: https://opendart.fss.or.kr/guide/main.do
package opendart

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
	providerName = "opendart"
	baseURL      = "https://opendart.fss.or.kr/api"
	credAPIKey   = "api_key"

	// Injected into query params by the provider so fetchers don't
	// handle credential management themselves.
	paramInjectedKey = "_dart_api_key"
)

// OpenDART response status codes.
const (
	statusOK         = "000" // success
	statusNoData     = "013" // no data for the requested period
	statusInvalidKey = "010" // unregistered key
	statusRateLimit  = "020" // request limit exceeded
)

// Provider implements provider.Provider for OpenDART.
type Provider struct {
	provider.BaseProvider
	apiKey string
}

// New creates a new OpenDART provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"OpenDART - Korean FSS corporate disclosures and financial statements",
			"https://opendart.fss.or.kr",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "OpenDART API key from opendart.fss.or.kr",
					Required:    true,
					EnvVar:      "OPENDART_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newCompanyDirectoryFetcher())
	p.RegisterFetcher(newFinancialStatementsFetcher())

	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// Ping checks connectivity and key validity against the disclosure list endpoint.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/list.json?crtfc_key=%s&page_count=1", baseURL, p.apiKey)
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return fmt.Errorf("opendart ping: %w", err)
	}
	defer body.Close()

	var resp dartStatus
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return fmt.Errorf("opendart ping: %w", err)
	}
	if resp.Status == statusInvalidKey {
		return &provider.ErrInvalidCredentials{Provider: providerName, Detail: resp.Message}
	}
	return nil
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the API key into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: &p.apiKey}
}

// apiKeyInjector wraps a Fetcher and injects the OpenDART API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey *string
}

func (w *apiKeyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *apiKeyInjector) Description() string           { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[paramInjectedKey] = *w.apiKey
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fetchDARTJSON performs a GET request to OpenDART and decodes the response.
func fetchDARTJSON(ctx context.Context, url string, dest any) error {
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse OpenDART JSON: %w", err)
	}
	return nil
}

// fetchDARTRaw performs a GET request and returns raw bytes.
func fetchDARTRaw(ctx context.Context, url string) ([]byte, error) {
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: time.Now()}
}

func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: time.Now(), Cached: true}
}

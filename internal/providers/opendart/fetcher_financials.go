package opendart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kfinlab/finharvest/internal/provider"
)

// ---- FinancialStatements fetcher ----
// Fetches one company's full-account statement for a single business
// year and report code (fnlttSinglAcntAll).

type financialStatementsFetcher struct {
	provider.BaseFetcher
}

func newFinancialStatementsFetcher() *financialStatementsFetcher {
	return &financialStatementsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelFinancialStatements,
			"Get all statement accounts for one company, year, and report code",
			[]string{provider.ParamCorpCode, provider.ParamYear, provider.ParamReportCode},
			[]string{provider.ParamFSDiv},
			30*time.Minute, 5, time.Second,
		),
	}
}

func (f *financialStatementsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	corpCode := params[provider.ParamCorpCode]
	reportCode := params[provider.ParamReportCode]
	fsDiv := params[provider.ParamFSDiv]
	if fsDiv == "" {
		fsDiv = "CFS"
	}

	year, err := strconv.Atoi(params[provider.ParamYear])
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", params[provider.ParamYear])
	}

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/fnlttSinglAcntAll.json?crtfc_key=%s&corp_code=%s&bsns_year=%d&reprt_code=%s&fs_div=%s",
		baseURL, params[paramInjectedKey], corpCode, year, reportCode, fsDiv)

	var resp fnlttResponse
	if err := fetchDARTJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("opendart statements %s/%d/%s: %w", corpCode, year, reportCode, err)
	}

	period := &provider.StatementPeriod{
		CorpCode:   corpCode,
		Year:       year,
		ReportCode: reportCode,
		FSDiv:      fsDiv,
	}

	switch resp.Status {
	case statusOK:
		period.Items = resp.List
	case statusNoData:
		// Nothing filed for this period; an empty Items slice says so.
	case statusInvalidKey:
		return nil, &provider.ErrInvalidCredentials{Provider: providerName, Detail: resp.Message}
	case statusRateLimit:
		return nil, fmt.Errorf("opendart request limit exceeded: %s", resp.Message)
	default:
		return nil, fmt.Errorf("opendart status %s: %s", resp.Status, resp.Message)
	}

	f.CacheSet(cacheKey, period)
	return newResult(period), nil
}

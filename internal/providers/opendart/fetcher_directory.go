package opendart

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/pkg/models"
	"github.com/kfinlab/finharvest/pkg/utils"
)

// ParamCutoffYears optionally overrides how many years of disclosure
// inactivity are tolerated before a company is treated as delisted.
const ParamCutoffYears = "cutoff_years"

const defaultCutoffYears = 2

// ---- CompanyDirectory fetcher ----
// Downloads the full corporation directory (corpCode.xml, a ZIP of one
// XML document) and filters it down to currently listed companies.

type companyDirectoryFetcher struct {
	provider.BaseFetcher
}

func newCompanyDirectoryFetcher() *companyDirectoryFetcher {
	return &companyDirectoryFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyDirectory,
			"Download the OpenDART corporation directory, filtered to listed companies",
			nil,
			[]string{ParamCutoffYears},
			24*time.Hour, 2, time.Second,
		),
	}
}

func (f *companyDirectoryFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	cutoffYears := defaultCutoffYears
	if v := params[ParamCutoffYears]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s %q", ParamCutoffYears, v)
		}
		cutoffYears = n
	}

	u := fmt.Sprintf("%s/corpCode.xml?crtfc_key=%s", baseURL, params[paramInjectedKey])
	raw, err := fetchDARTRaw(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("opendart corp directory: %w", err)
	}

	companies, err := parseCorpDirectory(raw, cutoffYears, utils.NowKST())
	if err != nil {
		return nil, fmt.Errorf("opendart corp directory: %w", err)
	}

	f.CacheSet(cacheKey, companies)
	return newResult(companies), nil
}

// parseCorpDirectory unpacks the corpCode.xml ZIP and keeps companies
// that carry a 6-digit stock code and have filed a disclosure within
// cutoffYears of now. Entries with an unparsable modify_date are kept;
// a stale date is the only evidence of delisting we act on.
func parseCorpDirectory(zipData []byte, cutoffYears int, now time.Time) ([]models.Company, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("open directory archive: %w", err)
	}

	var xmlData []byte
	for _, zf := range zr.File {
		if !strings.HasSuffix(strings.ToLower(zf.Name), ".xml") {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", zf.Name, err)
		}
		xmlData, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", zf.Name, err)
		}
		break
	}
	if xmlData == nil {
		return nil, fmt.Errorf("directory archive contains no XML document")
	}

	var list corpCodeList
	if err := xml.Unmarshal(xmlData, &list); err != nil {
		return nil, fmt.Errorf("parse directory XML: %w", err)
	}

	cutoff := now.AddDate(-cutoffYears, 0, 0)
	companies := make([]models.Company, 0, len(list.Items))
	for _, item := range list.Items {
		ticker := strings.TrimSpace(item.StockCode)
		if !isStockCode(ticker) {
			continue // unlisted entities have a blank or padded stock code
		}
		if modified, err := time.ParseInLocation("20060102", strings.TrimSpace(item.ModifyDate), utils.KST); err == nil {
			if modified.Before(cutoff) {
				continue
			}
		}
		companies = append(companies, models.Company{
			Ticker:   ticker,
			Name:     strings.TrimSpace(item.CorpName),
			CorpCode: strings.TrimSpace(item.CorpCode),
			Market:   "DART",
			Status:   models.StatusPending,
		})
	}
	return companies, nil
}

// isStockCode reports whether s is a 6-digit KRX stock code.
func isStockCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

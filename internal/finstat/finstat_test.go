package finstat

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/internal/providers/opendart"
	"github.com/kfinlab/finharvest/pkg/models"
)

func TestExtractAmountByAccountID(t *testing.T) {
	items := []provider.AccountItem{
		{AccountID: "ifrs-full_CurrentAssets", AccountName: "유동자산", Amount: "100"},
		{AccountID: "ifrs-full_Assets", AccountName: "자산총계", Amount: "1,234,567"},
	}
	v := extractAmount(items, fieldAssets)
	if v == nil || *v != 1234567 {
		t.Fatalf("expected 1234567, got %v", v)
	}
}

func TestExtractAmountTagPriority(t *testing.T) {
	items := []provider.AccountItem{
		{AccountID: "Assets", Amount: "2"},
		{AccountID: "ifrs-full_Assets", Amount: "1"},
	}
	v := extractAmount(items, fieldAssets)
	if v == nil || *v != 1 {
		t.Fatalf("expected priority tag to win, got %v", v)
	}
}

func TestExtractAmountNameFallback(t *testing.T) {
	items := []provider.AccountItem{
		{AccountID: "custom_Tag1", AccountName: "부채총계", Amount: "(500)"},
	}
	v := extractAmount(items, fieldLiabilities)
	if v == nil || *v != -500 {
		t.Fatalf("expected -500 via name keyword, got %v", v)
	}
}

func TestExtractAmountUnparsableIDThenName(t *testing.T) {
	// The ID match has an unparsable amount; the keyword path should
	// still resolve from another line.
	items := []provider.AccountItem{
		{AccountID: "ifrs-full_Revenue", AccountName: "무언가", Amount: "-"},
		{AccountID: "custom_Sales", AccountName: "매출액", Amount: "42"},
	}
	v := extractAmount(items, fieldRevenue)
	if v == nil || *v != 42 {
		t.Fatalf("expected 42 via keyword fallback, got %v", v)
	}
}

func TestExtractAmountNothingResolves(t *testing.T) {
	items := []provider.AccountItem{
		{AccountID: "custom_Tag", AccountName: "기타", Amount: "1"},
	}
	if v := extractAmount(items, fieldEquity); v != nil {
		t.Fatalf("expected nil, got %v", *v)
	}
	if v := extractAmount(nil, fieldEquity); v != nil {
		t.Fatalf("expected nil for empty items, got %v", *v)
	}
}

func TestBuildRow(t *testing.T) {
	company := models.Company{Ticker: "005930", Name: "삼성전자"}
	items := []provider.AccountItem{
		{AccountID: "ifrs-full_Assets", Amount: "1000"},
		{AccountID: "ifrs-full_ProfitLoss", Amount: "50"},
	}

	row, ok := buildRow(company, 2023, models.ReportAnnual, items)
	if !ok {
		t.Fatal("expected row to resolve")
	}
	if row.ReportName != "사업보고서" || row.ReportDate != "2023-12-31" {
		t.Errorf("unexpected report metadata: %+v", row)
	}
	if row.Assets == nil || *row.Assets != 1000 || row.NetIncome == nil || *row.NetIncome != 50 {
		t.Errorf("unexpected amounts: %+v", row)
	}
	if row.Revenue != nil {
		t.Errorf("expected nil revenue, got %v", *row.Revenue)
	}

	if _, ok := buildRow(company, 2023, models.ReportAnnual, nil); ok {
		t.Error("expected no row when nothing resolves")
	}
}

func TestSliceBatch(t *testing.T) {
	companies := make([]models.Company, 10)
	for i := range companies {
		companies[i].Ticker = strconv.Itoa(i)
	}

	cases := []struct {
		name             string
		start, end, size int
		want             int
		first            string
	}{
		{"all", 0, 0, 0, 10, "0"},
		{"batch cap", 0, 0, 4, 4, "0"},
		{"start offset", 3, 0, 0, 7, "3"},
		{"window", 2, 5, 0, 3, "2"},
		{"window then cap", 2, 8, 3, 3, "2"},
		{"start past end", 20, 0, 0, 0, ""},
		{"inverted", 5, 2, 0, 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sliceBatch(companies, tc.start, tc.end, tc.size)
			if len(got) != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, len(got))
			}
			if tc.want > 0 && got[0].Ticker != tc.first {
				t.Errorf("expected first %s, got %s", tc.first, got[0].Ticker)
			}
		})
	}
}

func TestProcessedLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.log")

	pl, err := LoadProcessedLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if pl.Len() != 0 {
		t.Fatalf("expected empty log, got %d", pl.Len())
	}

	for _, ticker := range []string{"005930", "000660"} {
		if err := pl.Append(ticker); err != nil {
			t.Fatal(err)
		}
	}
	if !pl.Contains("005930") {
		t.Error("expected in-memory set updated")
	}

	reloaded, err := LoadProcessedLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 2 || !reloaded.Contains("000660") {
		t.Errorf("unexpected reloaded log: len=%d", reloaded.Len())
	}
}

func TestWriteCompanyCSV(t *testing.T) {
	dir := t.TempDir()
	assets := 1000.0
	rows := []models.FinancialRow{
		{
			Ticker: "005930", CompanyName: "삼성전자", Year: 2023,
			ReportCode: models.ReportAnnual, ReportName: "사업보고서",
			ReportDate: "2023-12-31", Assets: &assets,
		},
	}

	path, err := WriteCompanyCSV(dir, "삼성전자", "005930", rows)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "dart_financial_삼성전자_005930.csv" {
		t.Errorf("unexpected file name: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "\xEF\xBB\xBF") {
		t.Error("expected UTF-8 BOM")
	}
	content := string(data)
	if !strings.Contains(content, "자산총계") || !strings.Contains(content, "1000") {
		t.Errorf("unexpected content:\n%s", content)
	}
	// Unresolved fields stay empty.
	if !strings.Contains(content, ",,,,") {
		t.Errorf("expected empty cells for unresolved fields:\n%s", content)
	}

	if _, err := WriteCompanyCSV(dir, "x", "1", nil); err == nil {
		t.Error("expected error for empty rows")
	}
}

// --- Collector integration against a fake registry ---

type fakeDirectoryFetcher struct {
	provider.BaseFetcher
	companies  []models.Company
	lastParams provider.QueryParams
}

func (f *fakeDirectoryFetcher) Fetch(_ context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	f.lastParams = params
	return &provider.FetchResult{Data: f.companies, FetchedAt: time.Now()}, nil
}

type fakeStatementsFetcher struct {
	provider.BaseFetcher
	// periods maps "corpCode/year/reportCode/fsDiv" to account lines.
	periods map[string][]provider.AccountItem
	calls   []string
}

func (f *fakeStatementsFetcher) Fetch(_ context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	key := params[provider.ParamCorpCode] + "/" + params[provider.ParamYear] + "/" +
		params[provider.ParamReportCode] + "/" + params[provider.ParamFSDiv]
	f.calls = append(f.calls, key)
	year, _ := strconv.Atoi(params[provider.ParamYear])
	period := &provider.StatementPeriod{
		CorpCode:   params[provider.ParamCorpCode],
		Year:       year,
		ReportCode: params[provider.ParamReportCode],
		FSDiv:      params[provider.ParamFSDiv],
		Items:      f.periods[key],
	}
	return &provider.FetchResult{Data: period, FetchedAt: time.Now()}, nil
}

type fakeDartProvider struct {
	provider.BaseProvider
}

func newFakeRegistry(t *testing.T, companies []models.Company, periods map[string][]provider.AccountItem) (*provider.Registry, *fakeDirectoryFetcher, *fakeStatementsFetcher) {
	t.Helper()
	p := &fakeDartProvider{BaseProvider: provider.NewBaseProvider("fakedart", "test provider", "", nil)}
	directory := &fakeDirectoryFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.ModelCompanyDirectory, "dir", nil, nil),
		companies:   companies,
	}
	p.RegisterFetcher(directory)
	stmts := &fakeStatementsFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.ModelFinancialStatements, "stmts",
			[]string{provider.ParamCorpCode, provider.ParamYear, provider.ParamReportCode}, nil),
		periods: periods,
	}
	p.RegisterFetcher(stmts)

	reg := provider.NewRegistry()
	if err := reg.Register(p); err != nil {
		t.Fatal(err)
	}
	return reg, directory, stmts
}

func TestCollectorRun(t *testing.T) {
	dir := t.TempDir()
	companies := []models.Company{
		{Ticker: "005930", Name: "삼성전자", CorpCode: "00126380"},
		{Ticker: "000001", Name: "데이터없음", CorpCode: "00000001"},
	}
	periods := map[string][]provider.AccountItem{
		// One annual report, consolidated.
		"00126380/2023/11011/CFS": {
			{AccountID: "ifrs-full_Assets", AccountName: "자산총계", Amount: "1000"},
		},
		// One half-year report only available as separate statements.
		"00126380/2023/11012/OFS": {
			{AccountID: "ifrs-full_Revenue", AccountName: "매출액", Amount: "300"},
		},
	}
	reg, _, _ := newFakeRegistry(t, companies, periods)

	c := NewCollector(reg, nil, Options{
		OutputDir:    dir,
		LogPath:      filepath.Join(dir, "processed.log"),
		StartYear:    2023,
		EndYear:      2023,
		RequestDelay: time.Millisecond,
	})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Attempted != 2 || summary.Saved != 1 || summary.NoData != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	csvPath := filepath.Join(dir, "dart_financial_삼성전자_005930.csv")
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("expected CSV written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "1000") || !strings.Contains(content, "300") {
		t.Errorf("expected both periods in CSV:\n%s", content)
	}

	// Both companies are logged processed, so a re-run does nothing.
	summary2, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary2.Attempted != 0 || summary2.Skipped != 2 {
		t.Errorf("expected full skip on re-run: %+v", summary2)
	}
}

func TestCollectorPassesCutoffYears(t *testing.T) {
	dir := t.TempDir()
	reg, directory, _ := newFakeRegistry(t, nil, nil)

	c := NewCollector(reg, nil, Options{
		OutputDir:    dir,
		LogPath:      filepath.Join(dir, "processed.log"),
		StartYear:    2023,
		EndYear:      2023,
		CutoffYears:  5,
		RequestDelay: time.Millisecond,
	})
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := directory.lastParams[opendart.ParamCutoffYears]; got != "5" {
		t.Errorf("expected cutoff years forwarded to the directory fetch, got %q", got)
	}

	// Zero keeps the provider default by omitting the param.
	c = NewCollector(reg, nil, Options{
		OutputDir:    dir,
		LogPath:      filepath.Join(dir, "processed.log"),
		StartYear:    2023,
		EndYear:      2023,
		RequestDelay: time.Millisecond,
	})
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := directory.lastParams[opendart.ParamCutoffYears]; ok {
		t.Error("expected no cutoff param when unset")
	}
}

func TestCollectorEarlyAbort(t *testing.T) {
	// No data anywhere: the collector should stop probing after three
	// consecutive empty periods instead of walking all years.
	dir := t.TempDir()
	companies := []models.Company{{Ticker: "000001", Name: "없음", CorpCode: "00000001"}}
	reg, _, stmts := newFakeRegistry(t, companies, nil)

	c := NewCollector(reg, nil, Options{
		OutputDir:    dir,
		LogPath:      filepath.Join(dir, "processed.log"),
		StartYear:    2014,
		EndYear:      2023,
		RequestDelay: time.Millisecond,
	})
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Three failed periods, each probed as CFS then OFS.
	if len(stmts.calls) != 6 {
		t.Errorf("expected 6 statement calls, got %d: %v", len(stmts.calls), stmts.calls)
	}
}

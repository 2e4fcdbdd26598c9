package opendart

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/pkg/models"
)

func TestProviderInfo(t *testing.T) {
	p := New()
	info := p.Info()
	if info.Name != "opendart" {
		t.Errorf("expected name opendart, got %s", info.Name)
	}
	if len(info.Credentials) != 1 || !info.Credentials[0].Required {
		t.Errorf("expected one required credential, got %+v", info.Credentials)
	}
}

func TestProviderSupportedModels(t *testing.T) {
	p := New()
	modelSet := make(map[provider.ModelType]bool)
	for _, m := range p.SupportedModels() {
		modelSet[m] = true
	}
	for _, m := range []provider.ModelType{provider.ModelCompanyDirectory, provider.ModelFinancialStatements} {
		if !modelSet[m] {
			t.Errorf("missing expected model: %s", m)
		}
	}
}

func TestProviderInitRequiresKey(t *testing.T) {
	p := New()
	if err := p.Init(nil); err == nil {
		t.Error("expected error for missing api_key")
	}
	if err := p.Init(map[string]string{"api_key": "test-key"}); err != nil {
		t.Fatalf("Init with key should succeed: %v", err)
	}
}

func TestFetcherInjectsKey(t *testing.T) {
	p := New()
	if err := p.Init(map[string]string{"api_key": "k"}); err != nil {
		t.Fatal(err)
	}
	f := p.Fetcher(provider.ModelCompanyDirectory)
	if f == nil {
		t.Fatal("expected non-nil fetcher")
	}
	if f.ModelType() != provider.ModelCompanyDirectory {
		t.Errorf("wrong model type: %s", f.ModelType())
	}
	if p.Fetcher(provider.ModelNewsSearch) != nil {
		t.Error("expected nil fetcher for unsupported model")
	}
}

// buildDirectoryZip packs the given XML into an in-memory corpCode.xml archive.
func buildDirectoryZip(t *testing.T, xmlDoc string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("CORPCODE.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(xmlDoc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseCorpDirectory(t *testing.T) {
	xmlDoc := `<?xml version="1.0" encoding="UTF-8"?>
<result>
  <list>
    <corp_code>00126380</corp_code>
    <corp_name>삼성전자</corp_name>
    <stock_code>005930</stock_code>
    <modify_date>20240115</modify_date>
  </list>
  <list>
    <corp_code>00999999</corp_code>
    <corp_name>비상장회사</corp_name>
    <stock_code> </stock_code>
    <modify_date>20240101</modify_date>
  </list>
  <list>
    <corp_code>00888888</corp_code>
    <corp_name>옛날회사</corp_name>
    <stock_code>123456</stock_code>
    <modify_date>20190101</modify_date>
  </list>
  <list>
    <corp_code>00777777</corp_code>
    <corp_name>날짜없음</corp_name>
    <stock_code>654321</stock_code>
    <modify_date>not-a-date</modify_date>
  </list>
</result>`

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	companies, err := parseCorpDirectory(buildDirectoryZip(t, xmlDoc), 2, now)
	if err != nil {
		t.Fatal(err)
	}

	// Listed and recent, plus the unparsable-date entry. The unlisted
	// entity and the stale one are dropped.
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d: %+v", len(companies), companies)
	}
	first := companies[0]
	if first.Ticker != "005930" || first.Name != "삼성전자" || first.CorpCode != "00126380" {
		t.Errorf("unexpected first company: %+v", first)
	}
	if first.Status != models.StatusPending || first.Market != "DART" {
		t.Errorf("expected pending/DART, got %s/%s", first.Status, first.Market)
	}
	if companies[1].Ticker != "654321" {
		t.Errorf("expected unparsable-date entry kept, got %+v", companies[1])
	}
}

func TestParseCorpDirectoryBadArchive(t *testing.T) {
	if _, err := parseCorpDirectory([]byte("not a zip"), 2, time.Now()); err == nil {
		t.Error("expected error for invalid archive")
	}
}

func TestIsStockCode(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"005930", true},
		{"123456", true},
		{"", false},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
	}
	for _, tc := range cases {
		if got := isStockCode(tc.in); got != tc.want {
			t.Errorf("isStockCode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

package finstat

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kfinlab/finharvest/pkg/models"
	"github.com/kfinlab/finharvest/pkg/utils"
)

// csvHeader keeps the original Korean account labels so downstream
// spreadsheets read naturally.
var csvHeader = []string{
	"자산총계", "부채총계", "자본총계", "매출액", "당기순이익",
	"bsns_year", "reprt_code", "report_name", "report_date",
	"기업명", "종목코드",
}

// WriteCompanyCSV writes one company's rows to
// dir/dart_financial_<name>_<ticker>.csv with a UTF-8 BOM so Excel
// detects the encoding. Returns the written path.
func WriteCompanyCSV(dir, companyName, ticker string, rows []models.FinancialRow) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no rows for %s", ticker)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	fileName := fmt.Sprintf("dart_financial_%s_%s.csv", utils.SanitizeFilename(companyName), ticker)
	path := filepath.Join(dir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fileName, err)
	}
	defer f.Close()

	// UTF-8 BOM for Excel.
	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, row := range rows {
		record := []string{
			formatAmount(row.Assets),
			formatAmount(row.Liabilities),
			formatAmount(row.Equity),
			formatAmount(row.Revenue),
			formatAmount(row.NetIncome),
			strconv.Itoa(row.Year),
			row.ReportCode,
			row.ReportName,
			row.ReportDate,
			row.CompanyName,
			row.Ticker,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// formatAmount renders a nullable amount, empty for unresolved fields.
func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

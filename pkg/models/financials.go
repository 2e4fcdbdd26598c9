package models

// Statement report codes used by the disclosure API, in collection
// priority order: Q1, half-year, Q3, then the annual business report.
const (
	ReportQ1     = "11013"
	ReportHalf   = "11012"
	ReportQ3     = "11014"
	ReportAnnual = "11011"
)

// ReportPriority lists report codes in the order they are collected
// within a business year.
var ReportPriority = []string{ReportQ1, ReportHalf, ReportQ3, ReportAnnual}

// ReportNames maps report codes to their official Korean report names,
// as carried through to the CSV output.
var ReportNames = map[string]string{
	ReportQ1:     "1분기보고서",
	ReportHalf:   "반기보고서",
	ReportQ3:     "3분기보고서",
	ReportAnnual: "사업보고서",
}

// ReportDates maps report codes to the month-day the period closes on.
var ReportDates = map[string]string{
	ReportQ1:     "03-31",
	ReportHalf:   "06-30",
	ReportQ3:     "09-30",
	ReportAnnual: "12-31",
}

// FinancialRow is one company × one reporting period, normalized to the
// five headline figures. A nil field means no matching account was
// found in that period's statement.
type FinancialRow struct {
	Ticker      string   `json:"ticker"`
	CompanyName string   `json:"company_name"`
	Year        int      `json:"year"`
	ReportCode  string   `json:"report_code"`
	ReportName  string   `json:"report_name"`
	ReportDate  string   `json:"report_date"` // YYYY-MM-DD period close
	Assets      *float64 `json:"assets,omitempty"`
	Liabilities *float64 `json:"liabilities,omitempty"`
	Equity      *float64 `json:"equity,omitempty"`
	Revenue     *float64 `json:"revenue,omitempty"`
	NetIncome   *float64 `json:"net_income,omitempty"`
}

// HasValues reports whether at least one of the five figures resolved.
// Rows without any resolved figure are never persisted.
func (r *FinancialRow) HasValues() bool {
	return r.Assets != nil || r.Liabilities != nil || r.Equity != nil ||
		r.Revenue != nil || r.NetIncome != nil
}

package provider

// ModelType identifies a standard data model that fetchers produce.
type ModelType string

const (
	// ModelCompanyDirectory is the directory of listed companies from
	// the disclosure API (data: []models.Company).
	ModelCompanyDirectory ModelType = "CompanyDirectory"

	// ModelFinancialStatements is one company's statement for one
	// business year and report code (data: *StatementPeriod).
	ModelFinancialStatements ModelType = "FinancialStatements"

	// ModelNewsSearch is one page of news-search results for a query
	// (data: []models.Article).
	ModelNewsSearch ModelType = "NewsSearch"

	// ModelMarketNews is recent market-wide news from RSS sources
	// (data: []models.Article).
	ModelMarketNews ModelType = "MarketNews"
)

// AccountItem is one raw account line from a financial statement, as
// reported by the disclosure API before normalization.
type AccountItem struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_nm"`
	Amount      string `json:"thstrm_amount"` // current-term amount, unparsed
}

// StatementPeriod is the raw statement payload for one company × one
// business year × one report code.
type StatementPeriod struct {
	CorpCode   string        `json:"corp_code"`
	Year       int           `json:"year"`
	ReportCode string        `json:"report_code"`
	FSDiv      string        `json:"fs_div"` // "CFS" or "OFS"
	Items      []AccountItem `json:"items"`
}

// Package finstat implements the financial-statement collection
// pipeline: enumerate listed companies from the disclosure directory,
// walk each company's filing periods newest first, normalize the five
// headline accounts, and write one CSV per company. A flat processed
// log makes interrupted runs resumable.
package finstat

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/internal/providers/opendart"
	"github.com/kfinlab/finharvest/pkg/models"
)

// failureThreshold is how many consecutive empty periods are tolerated
// before the rest of a company's timeline is abandoned.
const failureThreshold = 3

// Options configures a collection run.
type Options struct {
	OutputDir string // where per-company CSVs land
	LogPath   string // processed-companies log

	StartYear int // inclusive, oldest business year
	EndYear   int // inclusive, newest business year

	// Batch slicing over the not-yet-processed company list.
	StartIndex int
	EndIndex   int // 0 means the end of the list
	BatchSize  int // 0 means no cap

	CutoffYears  int           // delist cutoff for the directory, 0 keeps the provider default
	RequestDelay time.Duration // pause between statement requests
}

// Summary reports what a collection run did.
type Summary struct {
	Directory int // companies in the filtered directory
	Skipped   int // already in the processed log
	Attempted int // companies processed this session
	Saved     int // companies that produced a CSV
	NoData    int // attempted but nothing resolvable
}

// Collector drives the statement pipeline against a provider registry.
type Collector struct {
	reg  *provider.Registry
	log  *zap.Logger
	opts Options
}

// NewCollector creates a collector. Zero option fields get defaults:
// the last ten business years, batch size 400, 200ms request delay.
func NewCollector(reg *provider.Registry, logger *zap.Logger, opts Options) *Collector {
	if opts.EndYear == 0 {
		opts.EndYear = time.Now().Year()
	}
	if opts.StartYear == 0 {
		opts.StartYear = opts.EndYear - 10
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = 400
	}
	if opts.RequestDelay == 0 {
		opts.RequestDelay = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{reg: reg, log: logger, opts: opts}
}

// Run executes one batch of the collection pipeline.
func (c *Collector) Run(ctx context.Context) (*Summary, error) {
	params := provider.QueryParams{}
	if c.opts.CutoffYears > 0 {
		params[opendart.ParamCutoffYears] = strconv.Itoa(c.opts.CutoffYears)
	}
	res, err := c.reg.Fetch(ctx, provider.ModelCompanyDirectory, params)
	if err != nil {
		return nil, fmt.Errorf("fetch company directory: %w", err)
	}
	directory, ok := res.Data.([]models.Company)
	if !ok {
		return nil, fmt.Errorf("unexpected directory payload %T", res.Data)
	}

	plog, err := LoadProcessedLog(c.opts.LogPath)
	if err != nil {
		return nil, fmt.Errorf("load processed log: %w", err)
	}

	summary := &Summary{Directory: len(directory)}

	var remaining []models.Company
	for _, company := range directory {
		if plog.Contains(company.Ticker) {
			summary.Skipped++
			continue
		}
		remaining = append(remaining, company)
	}
	batch := sliceBatch(remaining, c.opts.StartIndex, c.opts.EndIndex, c.opts.BatchSize)

	c.log.Info("collection batch ready",
		zap.Int("directory", len(directory)),
		zap.Int("unprocessed", len(remaining)),
		zap.Int("batch", len(batch)))

	for _, company := range batch {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Attempted++

		rows := c.collectCompany(ctx, company)
		if len(rows) > 0 {
			path, err := WriteCompanyCSV(c.opts.OutputDir, company.Name, company.Ticker, rows)
			if err != nil {
				c.log.Error("write csv failed",
					zap.String("ticker", company.Ticker), zap.Error(err))
			} else {
				summary.Saved++
				c.log.Info("company saved",
					zap.String("ticker", company.Ticker),
					zap.String("name", company.Name),
					zap.Int("rows", len(rows)),
					zap.String("path", path))
			}
		} else {
			summary.NoData++
			c.log.Warn("no resolvable data",
				zap.String("ticker", company.Ticker),
				zap.String("name", company.Name))
		}

		// Logged processed either way so re-runs move forward.
		if err := plog.Append(company.Ticker); err != nil {
			return summary, fmt.Errorf("append processed log: %w", err)
		}
	}

	return summary, nil
}

// collectCompany walks years newest first and report codes in priority
// order, retrying each period with separate statements when the
// consolidated ones are empty. Three consecutive empty periods abandon
// the rest of the timeline.
func (c *Collector) collectCompany(ctx context.Context, company models.Company) []models.FinancialRow {
	var rows []models.FinancialRow
	consecutiveFailures := 0

	for year := c.opts.EndYear; year >= c.opts.StartYear; year-- {
		for _, reportCode := range models.ReportPriority {
			if consecutiveFailures >= failureThreshold {
				c.log.Debug("abandoning remaining periods",
					zap.String("ticker", company.Ticker),
					zap.Int("rows", len(rows)))
				return rows
			}
			if !c.pause(ctx) {
				return rows
			}

			period := c.fetchPeriod(ctx, company.CorpCode, year, reportCode, "CFS")
			if period == nil || len(period.Items) == 0 {
				period = c.fetchPeriod(ctx, company.CorpCode, year, reportCode, "OFS")
			}
			if period == nil || len(period.Items) == 0 {
				consecutiveFailures++
				continue
			}
			consecutiveFailures = 0

			row, ok := buildRow(company, year, reportCode, period.Items)
			if !ok {
				continue
			}
			rows = append(rows, row)
		}
	}

	return rows
}

// fetchPeriod requests one statement period, returning nil on any failure.
func (c *Collector) fetchPeriod(ctx context.Context, corpCode string, year int, reportCode, fsDiv string) *provider.StatementPeriod {
	res, err := c.reg.Fetch(ctx, provider.ModelFinancialStatements, provider.QueryParams{
		provider.ParamCorpCode:   corpCode,
		provider.ParamYear:       fmt.Sprintf("%d", year),
		provider.ParamReportCode: reportCode,
		provider.ParamFSDiv:      fsDiv,
	})
	if err != nil {
		c.log.Debug("statement fetch failed",
			zap.String("corp_code", corpCode),
			zap.Int("year", year),
			zap.String("report_code", reportCode),
			zap.String("fs_div", fsDiv),
			zap.Error(err))
		return nil
	}
	period, ok := res.Data.(*provider.StatementPeriod)
	if !ok {
		return nil
	}
	return period
}

// buildRow normalizes the five headline accounts out of a period's
// account lines. ok is false when none of them resolved.
func buildRow(company models.Company, year int, reportCode string, items []provider.AccountItem) (models.FinancialRow, bool) {
	row := models.FinancialRow{
		Ticker:      company.Ticker,
		CompanyName: company.Name,
		Year:        year,
		ReportCode:  reportCode,
		ReportName:  models.ReportNames[reportCode],
		ReportDate:  fmt.Sprintf("%d-%s", year, models.ReportDates[reportCode]),
	}
	row.Assets = extractAmount(items, fieldAssets)
	row.Liabilities = extractAmount(items, fieldLiabilities)
	row.Equity = extractAmount(items, fieldEquity)
	row.Revenue = extractAmount(items, fieldRevenue)
	row.NetIncome = extractAmount(items, fieldNetIncome)
	return row, row.HasValues()
}

// pause waits the configured request delay, returning false when the
// context expired first.
func (c *Collector) pause(ctx context.Context) bool {
	if c.opts.RequestDelay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.opts.RequestDelay):
		return true
	}
}

// sliceBatch applies start/end indices then the batch cap.
func sliceBatch(companies []models.Company, start, end, batchSize int) []models.Company {
	if start < 0 {
		start = 0
	}
	if start > len(companies) {
		return nil
	}
	if end <= 0 || end > len(companies) {
		end = len(companies)
	}
	if start > end {
		return nil
	}
	batch := companies[start:end]
	if batchSize > 0 && len(batch) > batchSize {
		batch = batch[:batchSize]
	}
	return batch
}

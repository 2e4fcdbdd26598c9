// Package report renders the news-scan results out of the store into
// two CSV files: a per-company summary and a detailed article list.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kfinlab/finharvest/internal/store"
	"github.com/kfinlab/finharvest/pkg/utils"
)

var summaryHeader = []string{"종목명", "종목코드", "시장구분", "총_기사수", "매칭_키워드수", "활용_카테고리수"}

var detailHeader = []string{"종목명", "기사날짜", "기사제목", "기사링크", "매칭_키워드수", "매칭_카테고리"}

// Paths holds where a report run wrote its files.
type Paths struct {
	Summary string
	Detail  string
}

// Write renders both report files into dir, stamped with the current
// KST time. Companies that never completed, or that completed without
// any matched article, are excluded.
func Write(ctx context.Context, st *store.Store, dir string) (*Paths, error) {
	return writeAt(ctx, st, dir, utils.NowKST())
}

func writeAt(ctx context.Context, st *store.Store, dir string, now time.Time) (*Paths, error) {
	aggs, err := st.CompletedAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load company aggregates: %w", err)
	}
	details, err := st.ArticleDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("load article details: %w", err)
	}
	if len(aggs) == 0 {
		return nil, fmt.Errorf("no completed companies to report")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	stamp := now.Format("20060102_150405")
	paths := &Paths{
		Summary: filepath.Join(dir, fmt.Sprintf("데이터자산_뉴스분석_기업별_요약_%s.csv", stamp)),
		Detail:  filepath.Join(dir, fmt.Sprintf("데이터자산_뉴스분석_상세_기사목록_%s.csv", stamp)),
	}

	if err := writeSummary(paths.Summary, aggs); err != nil {
		return nil, err
	}
	if err := writeDetail(paths.Detail, details); err != nil {
		return nil, err
	}
	return paths, nil
}

// writeSummary writes the per-company sheet. The store already orders
// by article count descending.
func writeSummary(path string, aggs []store.CompanyAggregate) error {
	return writeCSV(path, summaryHeader, func(w *csv.Writer) error {
		for _, a := range aggs {
			record := []string{
				a.Name,
				a.Ticker,
				a.Market,
				strconv.Itoa(a.ArticleCount),
				strconv.Itoa(a.KeywordCount),
				strconv.Itoa(a.CategoryCount),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeDetail writes the per-article sheet, most-matched articles first.
func writeDetail(path string, details []store.ArticleDetail) error {
	sorted := make([]store.ArticleDetail, len(details))
	copy(sorted, details)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MatchCount > sorted[j].MatchCount
	})

	return writeCSV(path, detailHeader, func(w *csv.Writer) error {
		for _, d := range sorted {
			date := ""
			if !d.PublishedAt.IsZero() {
				date = utils.FormatDateKST(d.PublishedAt)
			}
			record := []string{
				d.CompanyName,
				date,
				d.Title,
				d.Link,
				strconv.Itoa(d.MatchCount),
				strings.Join(d.Categories, ", "),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCSV creates path with a UTF-8 BOM, writes the header, then lets
// fill stream the records.
func writeCSV(path string, header []string, fill func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

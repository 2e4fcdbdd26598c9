// Package store implements the SQLite-backed collection cache. It holds
// the company worklist, saved articles, and their keyword matches, and
// serves the aggregates the report package consumes.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kfinlab/finharvest/pkg/models"
	"github.com/kfinlab/finharvest/pkg/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	ticker    TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	corp_code TEXT NOT NULL DEFAULT '',
	market    TEXT NOT NULL DEFAULT '',
	status    TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'completed', 'failed'))
);

CREATE TABLE IF NOT EXISTS articles (
	link         TEXT PRIMARY KEY,
	ticker       TEXT NOT NULL REFERENCES companies(ticker),
	pub_date     TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	full_content TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS keyword_matches (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	link     TEXT NOT NULL REFERENCES articles(link) ON DELETE CASCADE,
	category TEXT NOT NULL,
	keyword  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_ticker ON articles(ticker);
CREATE INDEX IF NOT EXISTS idx_matches_link ON keyword_matches(link);
`

// pubDateLayout is how article timestamps are stored (KST wall time).
const pubDateLayout = "2006-01-02 15:04:05"

// Store wraps the SQLite collection cache.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// SQLite supports a single writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertCompanies adds companies to the worklist, skipping tickers that
// already exist so re-runs never reset statuses. Returns how many rows
// were newly inserted.
func (s *Store) InsertCompanies(ctx context.Context, companies []models.Company) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO companies (ticker, name, corp_code, market, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range companies {
		status := c.Status
		if status == "" {
			status = models.StatusPending
		}
		res, err := stmt.ExecContext(ctx, c.Ticker, c.Name, c.CorpCode, c.Market, string(status))
		if err != nil {
			return 0, fmt.Errorf("insert company %s: %w", c.Ticker, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// PendingCompanies returns companies still awaiting processing, in
// ticker order.
func (s *Store) PendingCompanies(ctx context.Context) ([]models.Company, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, name, corp_code, market, status
		FROM companies WHERE status = ? ORDER BY ticker`,
		string(models.StatusPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		var status string
		if err := rows.Scan(&c.Ticker, &c.Name, &c.CorpCode, &c.Market, &status); err != nil {
			return nil, err
		}
		c.Status = models.ProcessingStatus(status)
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// StatusCounts returns how many companies sit in each status.
func (s *Store) StatusCounts(ctx context.Context) (map[models.ProcessingStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM companies GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ProcessingStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.ProcessingStatus(status)] = n
	}
	return counts, rows.Err()
}

// UpdateStatus moves a company to a new status, enforcing the
// pending → completed|failed transition rule.
func (s *Store) UpdateStatus(ctx context.Context, ticker string, to models.ProcessingStatus) error {
	var current string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM companies WHERE ticker = ?`, ticker).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("company %s not found", ticker)
	}
	if err != nil {
		return err
	}

	from := models.ProcessingStatus(current)
	if !from.CanTransition(to) {
		return fmt.Errorf("company %s: invalid status transition %s -> %s", ticker, from, to)
	}

	_, err = s.db.ExecContext(ctx, `UPDATE companies SET status = ? WHERE ticker = ?`, string(to), ticker)
	return err
}

// HasArticle reports whether an article with the given link is cached.
func (s *Store) HasArticle(ctx context.Context, link string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM articles WHERE link = ?`, link).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveArticle stores an article and its keyword matches in one
// transaction. Articles are unique by link; saving an already-cached
// link is a no-op and returns false.
func (s *Store) SaveArticle(ctx context.Context, a models.Article) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	pubDate := ""
	if !a.PublishedAt.IsZero() {
		pubDate = a.PublishedAt.In(utils.KST).Format(pubDateLayout)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO articles (link, ticker, pub_date, title, description, full_content)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.Link, a.Ticker, pubDate, a.Title, a.Description, a.FullContent)
	if err != nil {
		return false, fmt.Errorf("insert article %s: %w", a.Link, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, tx.Commit()
	}

	for _, m := range a.Matches {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO keyword_matches (link, category, keyword) VALUES (?, ?, ?)`,
			a.Link, m.Category, m.Keyword); err != nil {
			return false, fmt.Errorf("insert match for %s: %w", a.Link, err)
		}
	}

	return true, tx.Commit()
}

// CompanyAggregate is one row of the per-company report summary.
type CompanyAggregate struct {
	Ticker        string
	Name          string
	Market        string
	ArticleCount  int
	KeywordCount  int
	CategoryCount int
}

// CompletedAggregates returns per-company article and keyword counts
// for companies that finished processing, ordered by article count
// descending then ticker. Companies without any keyword-matched
// article never appear in the summary.
func (s *Store) CompletedAggregates(ctx context.Context) ([]CompanyAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.ticker, c.name, c.market,
		       COUNT(DISTINCT a.link),
		       COUNT(DISTINCT m.keyword),
		       COUNT(DISTINCT m.category)
		FROM companies c
		JOIN articles a ON a.ticker = c.ticker
		JOIN keyword_matches m ON m.link = a.link
		WHERE c.status = ?
		GROUP BY c.ticker, c.name, c.market
		ORDER BY COUNT(DISTINCT a.link) DESC, c.ticker`,
		string(models.StatusCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []CompanyAggregate
	for rows.Next() {
		var a CompanyAggregate
		if err := rows.Scan(&a.Ticker, &a.Name, &a.Market, &a.ArticleCount, &a.KeywordCount, &a.CategoryCount); err != nil {
			return nil, err
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// ArticleDetail is one row of the per-article report detail.
type ArticleDetail struct {
	Ticker      string
	CompanyName string
	Title       string
	Link        string
	PublishedAt time.Time
	MatchCount  int
	Categories  []string
}

// ArticleDetails returns every cached article for completed companies
// with its match count and distinct categories, newest first.
func (s *Store) ArticleDetails(ctx context.Context) ([]ArticleDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.ticker, c.name, a.title, a.link, a.pub_date,
		       COUNT(m.id),
		       COALESCE(GROUP_CONCAT(DISTINCT m.category), '')
		FROM articles a
		JOIN companies c ON c.ticker = a.ticker
		LEFT JOIN keyword_matches m ON m.link = a.link
		WHERE c.status = ?
		GROUP BY a.link
		ORDER BY a.pub_date DESC, a.link`,
		string(models.StatusCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []ArticleDetail
	for rows.Next() {
		var d ArticleDetail
		var pubDate, categories string
		if err := rows.Scan(&d.Ticker, &d.CompanyName, &d.Title, &d.Link, &pubDate, &d.MatchCount, &categories); err != nil {
			return nil, err
		}
		if pubDate != "" {
			if t, err := time.ParseInLocation(pubDateLayout, pubDate, utils.KST); err == nil {
				d.PublishedAt = t
			}
		}
		if categories != "" {
			d.Categories = strings.Split(categories, ",")
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

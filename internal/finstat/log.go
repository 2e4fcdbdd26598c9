package finstat

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProcessedLog is the flat resume log: one ticker per line, appended as
// each company finishes regardless of outcome.
type ProcessedLog struct {
	path string
	seen map[string]bool
}

// LoadProcessedLog reads the log at path. A missing file yields an
// empty log.
func LoadProcessedLog(path string) (*ProcessedLog, error) {
	pl := &ProcessedLog{path: path, seen: make(map[string]bool)}
	if path == "" {
		return pl, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return pl, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			pl.seen[line] = true
		}
	}
	return pl, scanner.Err()
}

// Contains reports whether ticker was already processed.
func (pl *ProcessedLog) Contains(ticker string) bool {
	return pl.seen[ticker]
}

// Len returns how many tickers the log holds.
func (pl *ProcessedLog) Len() int {
	return len(pl.seen)
}

// Append records a ticker, writing through to the log file immediately
// so a crash never repeats finished work.
func (pl *ProcessedLog) Append(ticker string) error {
	pl.seen[ticker] = true
	if pl.path == "" {
		return nil
	}

	if dir := filepath.Dir(pl.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(pl.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, ticker); err != nil {
		return err
	}
	return nil
}

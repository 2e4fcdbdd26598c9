// Package models defines the shared data types used across FinHarvest:
// listed companies, normalized financial statement rows, news articles,
// and keyword matches.
package models

// ProcessingStatus tracks how far a company has progressed through a
// collection pipeline. The only legal transitions are
// pending → completed and pending → failed.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusCompleted ProcessingStatus = "completed"
	StatusFailed    ProcessingStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether a status change from s to next is legal.
// Terminal states never transition, not even to themselves.
func (s ProcessingStatus) CanTransition(next ProcessingStatus) bool {
	return s == StatusPending && (next == StatusCompleted || next == StatusFailed)
}

// Company is a KRX-listed company as enumerated from the disclosure
// directory. Ticker is the 6-digit stock code and is unique.
type Company struct {
	Ticker   string           `json:"ticker"`
	Name     string           `json:"name"`
	CorpCode string           `json:"corp_code"` // OpenDART internal corporation code
	Market   string           `json:"market"`    // e.g. "KOSPI", "KOSDAQ", or directory origin
	Status   ProcessingStatus `json:"status"`
}

package utils

import "time"

// KST is the Korea Standard Time location (UTC+9).
var KST *time.Location

func init() {
	var err error
	KST, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		// Fallback: fixed zone if the tz database is not available.
		KST = time.FixedZone("KST", 9*60*60)
	}
}

// NowKST returns the current time in KST.
func NowKST() time.Time {
	return time.Now().In(KST)
}

// FormatDateKST formats t as YYYY-MM-DD in KST.
func FormatDateKST(t time.Time) string {
	return t.In(KST).Format("2006-01-02")
}

// WithinDateRange reports whether t falls within [start, end], where
// start and end are YYYY-MM-DD strings compared on the KST calendar
// date. Empty bounds are open.
func WithinDateRange(t time.Time, start, end string) bool {
	d := FormatDateKST(t)
	if start != "" && d < start {
		return false
	}
	if end != "" && d > end {
		return false
	}
	return true
}

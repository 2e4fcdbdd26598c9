package utils

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }
	tests := []struct {
		input string
		want  *float64
	}{
		{"1,234,567", ptr(1234567)},
		{"  42 ", ptr(42)},
		{"(1,000)", ptr(-1000)},
		{"-512", ptr(-512)},
		{"", nil},
		{"-", nil},
		{"nan", nil},
		{"None", nil},
		{"NULL", nil},
		{"abc", nil},
	}
	for _, tt := range tests {
		got := ParseAmount(tt.input)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParseAmount(%q) = %v, want nil", tt.input, *got)
		case tt.want != nil && got == nil:
			t.Errorf("ParseAmount(%q) = nil, want %v", tt.input, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, *got, *tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"삼성전자", "삼성전자"},
		{"LG화학(주)", "LG화학주"},
		{"A/B:C*D", "ABCD"},
		{"name  ", "name"},
		{"a_b-c 1", "a_b-c 1"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"<b>삼성전자</b> 발표", "삼성전자 발표"},
		{"A &amp; B", "A & B"},
		{"no  tags\n here", "no tags here"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.input); got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestWithinDateRange(t *testing.T) {
	ts := time.Date(2020, 6, 15, 12, 0, 0, 0, KST)
	tests := []struct {
		start, end string
		want       bool
	}{
		{"2015-01-01", "2024-12-31", true},
		{"2020-06-15", "2020-06-15", true},
		{"2020-06-16", "2024-12-31", false},
		{"2015-01-01", "2020-06-14", false},
		{"", "", true},
	}
	for _, tt := range tests {
		if got := WithinDateRange(ts, tt.start, tt.end); got != tt.want {
			t.Errorf("WithinDateRange(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

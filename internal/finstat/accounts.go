package finstat

import (
	"strings"

	"github.com/kfinlab/finharvest/internal/provider"
	"github.com/kfinlab/finharvest/pkg/utils"
)

// accountField identifies one of the five normalized statement fields.
type accountField int

const (
	fieldAssets accountField = iota
	fieldLiabilities
	fieldEquity
	fieldRevenue
	fieldNetIncome
)

var allFields = []accountField{fieldAssets, fieldLiabilities, fieldEquity, fieldRevenue, fieldNetIncome}

// accountTags maps each field to XBRL account IDs, in match priority
// order. Filers vary between the ifrs-full, ifrs, dart, and bare
// taxonomies.
var accountTags = map[accountField][]string{
	fieldAssets:      {"ifrs-full_Assets", "dart_TotalAssets", "ifrs_Assets", "Assets"},
	fieldLiabilities: {"ifrs-full_Liabilities", "dart_TotalLiabilities", "ifrs_Liabilities", "Liabilities"},
	fieldEquity:      {"ifrs-full_Equity", "dart_TotalEquity", "ifrs_Equity", "Equity"},
	fieldRevenue:     {"ifrs-full_Revenue", "dart_Revenue", "Revenue"},
	fieldNetIncome:   {"ifrs-full_ProfitLoss", "dart_ProfitLoss", "ProfitLoss"},
}

// nameKeywords is the fallback when no account ID matches: substring
// match against the Korean account name.
var nameKeywords = map[accountField][]string{
	fieldAssets:      {"자산총계", "총자산"},
	fieldLiabilities: {"부채총계", "총부채"},
	fieldEquity:      {"자본총계", "총자본"},
	fieldRevenue:     {"매출액", "영업수익"},
	fieldNetIncome:   {"당기순이익", "순이익"},
}

// extractAmount resolves one field from a statement's account lines:
// exact account-ID match first (case-insensitive), then account-name
// keyword containment. Returns nil when nothing resolves.
func extractAmount(items []provider.AccountItem, field accountField) *float64 {
	if len(items) == 0 {
		return nil
	}
	if item, ok := findByAccountID(items, accountTags[field]); ok {
		if v := utils.ParseAmount(item.Amount); v != nil {
			return v
		}
		// Matched ID with an unparsable amount: fall through to the
		// name keywords rather than trying weaker tags.
	}
	if item, ok := findByName(items, nameKeywords[field]); ok {
		return utils.ParseAmount(item.Amount)
	}
	return nil
}

// findByAccountID returns the first item whose account ID equals one of
// the tags, honoring tag priority order.
func findByAccountID(items []provider.AccountItem, tags []string) (provider.AccountItem, bool) {
	for _, tag := range tags {
		for _, item := range items {
			if strings.EqualFold(strings.TrimSpace(item.AccountID), tag) {
				return item, true
			}
		}
	}
	return provider.AccountItem{}, false
}

// findByName returns the first item whose account name contains one of
// the keywords, honoring keyword priority order.
func findByName(items []provider.AccountItem, keywords []string) (provider.AccountItem, bool) {
	for _, kw := range keywords {
		for _, item := range items {
			if strings.Contains(item.AccountName, kw) {
				return item, true
			}
		}
	}
	return provider.AccountItem{}, false
}

package utils

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spaceRe = regexp.MustCompile(`\s+`)

// CleanHTML strips tags and entities from an HTML fragment and
// collapses runs of whitespace. Search API titles and descriptions
// arrive with <b> highlighting and escaped entities.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return CollapseSpace(doc.Text())
}

// CollapseSpace trims s and collapses interior whitespace runs to a
// single space.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

package newsscan

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/kfinlab/finharvest/pkg/utils"
)

// contentSelectors are tried in order against Korean news-site markup;
// the first hit wins. #dic_area covers Naver's own article pages.
var contentSelectors = []string{"#dic_area", ".news_end", ".article_body", "#articletxt", ".content", "article"}

// unwantedSelector strips ads, widgets, and boilerplate from a matched
// article container before its text is taken.
const unwantedSelector = "script, style, .ad, .advertisement, .social, .share, .comment, .footer"

// ExtractContent pulls article body text out of a news page. Known
// container selectors are tried first; pages with unfamiliar markup
// fall back to readability extraction. The result is whitespace
// collapsed and clamped to maxLen runes. Failures yield "".
func ExtractContent(html, pageURL string, maxLen int) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		sel.Find(unwantedSelector).Remove()
		return clampRunes(utils.CollapseSpace(sel.Text()), maxLen)
	}

	return clampRunes(extractReadable(html, pageURL), maxLen)
}

// extractReadable is the readability fallback for unknown page layouts.
func extractReadable(html, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return ""
	}
	return utils.CollapseSpace(article.TextContent)
}

// clampRunes truncates s to at most n runes.
func clampRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

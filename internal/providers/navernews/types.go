package navernews

// naverSearchResponse is the news-search result envelope.
type naverSearchResponse struct {
	Total   int         `json:"total"`
	Start   int         `json:"start"`
	Display int         `json:"display"`
	Items   []naverItem `json:"items"`
}

// naverItem is one search hit. Title and description carry <b> markup
// around the matched terms and HTML entities; pubDate is RFC1123-like
// with a numeric +0900 zone.
type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

package newsscan

import (
	"strings"

	"github.com/kfinlab/finharvest/pkg/models"
)

// keywordCategory groups the data-asset keywords scanned for in article
// text. Order is significant: matches report categories in this order.
type keywordCategory struct {
	Name     string
	Keywords []string
}

var keywordCategories = []keywordCategory{
	{
		Name:     "기본",
		Keywords: []string{"데이터", "데이터자산", "빅데이터", "AI", "인공지능", "머신러닝", "딥러닝", "알고리즘", "데이터분석", "DB", "데이터베이스"},
	},
	{
		Name:     "인프라",
		Keywords: []string{"클라우드", "데이터센터", "데이터 플랫폼", "데이터 레이크", "데이터 웨어하우스", "ETL", "API", "분산저장", "엣지컴퓨팅", "슈퍼컴퓨터", "GPU", "NPU"},
	},
	{
		Name:     "활용분야",
		Keywords: []string{"자연언어처리", "컴퓨터비전", "추천시스템", "예측모델링", "헬스 데이터", "유전체 데이터", "바이오데이터", "IoT 데이터", "자율주행 데이터", "CRM 데이터", "ERP 데이터", "로그데이터", "사용자 행동 데이터"},
	},
	{
		Name:     "무형연계자산",
		Keywords: []string{"소프트웨어 자산", "지식재산권", "디지털 트윈", "메타버스 자산"},
	},
	{
		Name:     "신흥영역",
		Keywords: []string{"생성형AI", "LLM", "합성데이터", "데이터 라벨링", "데이터 거버넌스", "데이터 품질", "데이터 윤리", "데이터 보안", "데이터 프라이버시"},
	},
}

// flatKeywords holds every keyword lowercased, for the cheap prefilter
// before article bodies are fetched.
var flatKeywords []string

func init() {
	for _, cat := range keywordCategories {
		for _, kw := range cat.Keywords {
			flatKeywords = append(flatKeywords, strings.ToLower(kw))
		}
	}
}

// MatchKeywords finds every keyword present in text, case-insensitively,
// grouped in category declaration order.
func MatchKeywords(text string) []models.KeywordMatch {
	lower := strings.ToLower(text)
	var matches []models.KeywordMatch
	for _, cat := range keywordCategories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matches = append(matches, models.KeywordMatch{Category: cat.Name, Keyword: kw})
			}
		}
	}
	return matches
}

// ContainsAnyKeyword reports whether text mentions any keyword at all.
// Used to skip body fetches for clearly irrelevant articles.
func ContainsAnyKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range flatKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

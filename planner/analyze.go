package planner

import (
	"regexp"
	"strings"

	"github.com/synaptiq/tagrank/boost"
	"github.com/synaptiq/tagrank/core"
)

const (
	minKeywordLength = 2
	maxKeywordLength = 20
)

var (
	tokenSplitPattern   = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	specificDatePattern = regexp.MustCompile(`\d{4}\s*[-/年.]\s*\d{1,2}\s*[-/月.]\s*\d{1,2}`)
)

// timeKeywords maps a time-reference token to its symbolic range.
var timeKeywords = map[string]string{
	"today":     "today",
	"tonight":   "today",
	"今天":        "today",
	"今晚":        "today",
	"yesterday": "yesterday",
	"昨天":        "yesterday",
	"week":      "week",
	"本周":        "week",
	"这周":        "week",
	"上周":        "week",
	"month":     "month",
	"本月":        "month",
	"这个月":       "month",
	"上个月":       "month",
	"year":      "year",
	"今年":        "year",
	"去年":        "year",
	"recently":  "week",
	"最近":        "week",
}

var questionPrefixes = []string{
	"what", "when", "where", "who", "whom", "whose", "why", "how", "which",
	"is", "are", "was", "were", "do", "does", "did", "can", "could",
	"should", "would", "will",
	"什么", "为什么", "怎么", "如何", "哪", "谁", "是否",
}

var recallKeywords = []string{
	"remember", "recall", "mentioned", "talked about", "said before",
	"last time", "earlier",
	"记得", "回忆", "之前", "上次", "提到过", "说过",
}

var summaryKeywords = []string{
	"summarize", "summary", "overview", "recap", "sum up",
	"总结", "概括", "梳理", "归纳",
}

var comparisonKeywords = []string{
	"compare", "comparison", "versus", "vs", "difference", "differences",
	"better", "worse",
	"对比", "比较", "区别", "差异",
}

// AnalyzeQuery extracts retrieval-relevant structure from the raw query.
// It is pure and deterministic.
func AnalyzeQuery(query string) core.QueryAnalysis {
	lower := strings.ToLower(strings.TrimSpace(query))
	return core.QueryAnalysis{
		Keywords:    extractKeywords(lower),
		Tags:        boost.ExtractExplicitTags(query),
		TimeRelated: inferTimeRange(lower) != "",
		IsQuestion:  detectQuestion(lower),
		Intent:      classifyIntent(lower),
	}
}

func extractKeywords(lower string) []string {
	tokens := tokenSplitPattern.Split(lower, -1)
	seen := make(map[string]bool, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, token := range tokens {
		length := len([]rune(token))
		if length < minKeywordLength || length > maxKeywordLength || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}
	return keywords
}

// inferTimeRange returns the symbolic range named by the query, or "".
// A specific calendar date is treated as day precision.
func inferTimeRange(lower string) string {
	if specificDatePattern.MatchString(lower) {
		return "today"
	}
	for _, token := range tokenSplitPattern.Split(lower, -1) {
		if symbolic, ok := timeKeywords[token]; ok {
			return symbolic
		}
	}
	// CJK time words rarely stand alone as tokens.
	for keyword, symbolic := range timeKeywords {
		if isCJK(keyword) && strings.Contains(lower, keyword) {
			return symbolic
		}
	}
	return ""
}

func detectQuestion(lower string) bool {
	if strings.HasSuffix(lower, "?") || strings.HasSuffix(lower, "？") ||
		strings.HasSuffix(lower, "吗") || strings.HasSuffix(lower, "呢") {
		return true
	}
	for _, prefix := range questionPrefixes {
		if isCJK(prefix) {
			if strings.Contains(lower, prefix) {
				return true
			}
			continue
		}
		if lower == prefix || strings.HasPrefix(lower, prefix+" ") {
			return true
		}
	}
	return false
}

// classifyIntent applies the priority order recall > summary > comparison,
// defaulting to plain search.
func classifyIntent(lower string) core.Intent {
	if containsAny(lower, recallKeywords) {
		return core.IntentRecall
	}
	if containsAny(lower, summaryKeywords) {
		return core.IntentSummary
	}
	if containsAny(lower, comparisonKeywords) {
		return core.IntentComparison
	}
	return core.IntentSearch
}

func containsAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if isCJK(keyword) || strings.Contains(keyword, " ") {
			if strings.Contains(lower, keyword) {
				return true
			}
			continue
		}
		if containsWord(lower, keyword) {
			return true
		}
	}
	return false
}

// containsWord reports whether keyword occurs as a whole token.
func containsWord(lower, keyword string) bool {
	for _, token := range tokenSplitPattern.Split(lower, -1) {
		if token == keyword {
			return true
		}
	}
	return false
}

func isCJK(s string) bool {
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

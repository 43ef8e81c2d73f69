package boost

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/synaptiq/tagrank/core"
)

const (
	minTokenLength = 2
	maxTokenLength = 20
)

var (
	// hashtagPattern matches #word over letter/digit/underscore runs,
	// which covers CJK characters via the unicode letter class.
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

	// bracketPattern matches explicit [tag] tokens.
	bracketPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

	// tokenSplitPattern splits residual text on punctuation and whitespace.
	tokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

	// frontmatterPattern matches a leading --- delimited frontmatter block.
	frontmatterPattern = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---`)

	// frontmatterTagsPattern matches the frontmatter tags: field.
	frontmatterTagsPattern = regexp.MustCompile(`(?m)^tags:\s*(.+)$`)
)

// ExtractTagsFromQuery extracts candidate tags from free query text:
// hashtag tokens, bracket tokens, and residual tokens of 2-20 runes.
// The result is normalized and deduplicated, first occurrence first.
func ExtractTagsFromQuery(query string) []string {
	return extractTags(query)
}

// ExtractExplicitTags extracts only explicitly marked tags, hashtag and
// bracket tokens, without the residual tokenization. Query analysis uses
// this form so plain prose does not read as tagged.
func ExtractExplicitTags(text string) []string {
	var tags []string
	for _, match := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}
	for _, match := range bracketPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}
	return core.NormalizeTags(tags)
}

// ExtractTagsFromContent extracts tags from document content. In addition
// to the query extraction rules, a leading frontmatter block's tags: field
// is parsed as a comma-separated source.
func ExtractTagsFromContent(content string) []string {
	var tags []string
	if fm := frontmatterPattern.FindStringSubmatch(content); fm != nil {
		if field := frontmatterTagsPattern.FindStringSubmatch(fm[1]); field != nil {
			for _, tag := range strings.Split(field[1], ",") {
				tags = append(tags, strings.Trim(tag, " \t\"'[]"))
			}
		}
	}
	tags = append(tags, extractTags(content)...)
	return core.NormalizeTags(tags)
}

func extractTags(text string) []string {
	var tags []string
	for _, match := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}
	for _, match := range bracketPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}
	for _, token := range tokenSplitPattern.Split(text, -1) {
		length := utf8.RuneCountInString(token)
		if length >= minTokenLength && length <= maxTokenLength {
			tags = append(tags, token)
		}
	}
	return core.NormalizeTags(tags)
}

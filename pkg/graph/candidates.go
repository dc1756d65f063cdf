package graph

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Candidate weights per pattern family. Headings name the things a
// document is about, so they dominate; bare lowercase words barely count.
const (
	weightHeading    = 5.0
	weightInlineCode = 4.0
	weightIdentifier = 3.0
	weightCJKRun     = 3.0
	weightQuoted     = 2.0
	weightWord       = 1.0
)

var (
	reHeading     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t#]*$`)
	reCodeSpan    = regexp.MustCompile("`([^`\n]+)`")
	reCamelIdent  = regexp.MustCompile(`\b[A-Za-z][a-z0-9]*(?:[A-Z][A-Za-z0-9]*)+\b`)
	reSnakeIdent  = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9]*(?:[_-][A-Za-z0-9]+)+\b`)
	reCJKRun      = regexp.MustCompile(`[\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}]{2,}`)
	reQuoted      = regexp.MustCompile(`["“「]([^"”」\n]{2,48})["”」]`)
	reLowerWord   = regexp.MustCompile(`\b[a-z][a-z0-9]{1,}\b`)
	rePureNumeric = regexp.MustCompile(`^[0-9.,%]+$`)
)

// stopwords covers structural and functional nouns of the working
// languages that never make useful entities on their own.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "with", "this", "that", "these", "those", "from",
		"are", "was", "were", "will", "would", "can", "could", "should",
		"has", "have", "had", "not", "but", "all", "any", "each", "into",
		"when", "then", "than", "them", "they", "there", "here", "where",
		"what", "which", "while", "also", "more", "most", "some", "such",
		"its", "his", "her", "our", "your", "their", "one", "two", "you",
		"via", "per", "etc", "eg", "ie", "example", "section", "chapter",
		"overview", "introduction", "note", "notes", "todo", "see", "how",
		"why", "about", "above", "below", "between", "before", "after",
		"first", "second", "other", "same", "new", "following",
		// zh structural / functional terms
		"我们", "你们", "他们", "这个", "那个", "这些", "那些", "一个",
		"可以", "需要", "通过", "进行", "实现", "基于", "以及", "并且",
		"或者", "如果", "因为", "所以", "没有", "就是", "对于", "其中",
		"相关", "支持", "调用", "使用", "依赖", "包含", "提供", "存储",
		"保存", "处理", "连接", "如下", "例如", "注意", "说明", "介绍",
	} {
		stopwords[w] = struct{}{}
	}
}

// candidate is one admitted entity-name candidate. The key is the
// case-folded, space-collapsed form used for deduplication; the label is
// the longest surface form seen so far.
type candidate struct {
	key    string
	label  string
	weight float64
}

// candidateKey folds a surface form to its merge key.
func candidateKey(label string) string {
	return strings.ToLower(collapseSpaces(label))
}

// admissible applies the entity filter at admission time: candidates
// shorter than 2 runes, purely numeric, or in the stopword set never
// enter the candidate map.
func admissible(key string) bool {
	if utf8.RuneCountInString(key) < 2 {
		return false
	}
	if rePureNumeric.MatchString(key) {
		return false
	}
	if _, stopped := stopwords[key]; stopped {
		return false
	}
	return true
}

// extractCandidates harvests entity-name candidates from structure-stripped
// text. Each pattern family contributes an independent weighted vote;
// votes merge by normalized key, keeping the longest surface form. The
// result is ranked by descending weight, ties broken by longer label,
// then by key for a stable order.
func extractCandidates(text string) []candidate {
	byKey := map[string]*candidate{}

	add := func(label string, weight float64) {
		label = collapseSpaces(label)
		key := candidateKey(label)
		if key == "" || !admissible(key) {
			return
		}
		if existing, ok := byKey[key]; ok {
			existing.weight += weight
			if utf8.RuneCountInString(label) > utf8.RuneCountInString(existing.label) {
				existing.label = label
			}
			return
		}
		byKey[key] = &candidate{key: key, label: label, weight: weight}
	}

	for _, m := range reHeading.FindAllStringSubmatch(text, -1) {
		add(strings.Trim(m[1], "`*_ "), weightHeading)
	}
	for _, m := range reCodeSpan.FindAllStringSubmatch(text, -1) {
		add(m[1], weightInlineCode)
	}

	// Plain-word strategies run on the fully flattened text so code-span
	// backticks do not split identifier tokens.
	flat := reCodeSpan.ReplaceAllString(text, " $1 ")

	for _, m := range reCamelIdent.FindAllString(flat, -1) {
		add(m, weightIdentifier)
	}
	for _, m := range reSnakeIdent.FindAllString(flat, -1) {
		add(m, weightIdentifier)
	}
	for _, m := range reCJKRun.FindAllString(flat, -1) {
		add(m, weightCJKRun)
	}
	for _, m := range reQuoted.FindAllStringSubmatch(flat, -1) {
		add(m[1], weightQuoted)
	}
	for _, m := range reLowerWord.FindAllString(flat, -1) {
		add(m, weightWord)
	}

	ranked := make([]candidate, 0, len(byKey))
	for _, c := range byKey {
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		li, lj := utf8.RuneCountInString(ranked[i].label), utf8.RuneCountInString(ranked[j].label)
		if li != lj {
			return li > lj
		}
		return ranked[i].key < ranked[j].key
	})
	return ranked
}

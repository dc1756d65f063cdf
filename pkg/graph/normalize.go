package graph

import (
	"regexp"
	"strings"
)

var (
	reFencedCode = regexp.MustCompile("(?s)```.*?```")
	reFenceOpen  = regexp.MustCompile("(?m)^```.*$")
	reInlineCode = regexp.MustCompile("`([^`\n]*)`")
	reImage      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reLink       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// NormalizeText strips markdown machinery from raw documentation text:
// fenced code blocks are removed entirely, inline code spans keep their
// inner text as plain words, images are dropped, and links keep their
// text while dropping the URL. It always returns a string, possibly empty.
func NormalizeText(raw string) string {
	s := stripStructure(raw)
	s = reInlineCode.ReplaceAllString(s, " $1 ")
	return s
}

// stripStructure removes fences, images and link URLs but leaves inline
// code markers in place so the candidate extractor can still score code
// spans before they are flattened to plain words.
func stripStructure(raw string) string {
	s := reFencedCode.ReplaceAllString(raw, " ")
	// An unclosed fence would otherwise leak raw code into the text.
	s = reFenceOpen.ReplaceAllString(s, " ")
	s = reImage.ReplaceAllString(s, " ")
	s = reLink.ReplaceAllString(s, "$1")
	return s
}

// collapseSpaces trims and folds runs of whitespace into single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

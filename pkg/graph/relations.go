package graph

import (
	"regexp"
	"sort"
	"strings"
)

var reSentenceEnd = regexp.MustCompile(`[.!?。．！？;；\n\r]+`)

// relationRules is an ordered keyword table tried top to bottom against
// the whole sentence; the first group with a hit names the relation.
var relationRules = []struct {
	keywords []string
	label    string
}{
	{[]string{"call", "invoke", "调用"}, "calls"},
	{[]string{"depend", "require", "依赖"}, "depends on"},
	{[]string{"use", "utilize", "使用"}, "uses"},
	{[]string{"contain", "include", "包含"}, "contains"},
	{[]string{"provide", "expose", "serve", "提供", "暴露"}, "provides"},
	{[]string{"store", "persist", "save", "存储", "保存"}, "stores"},
	{[]string{"process", "handle", "处理"}, "processes"},
	{[]string{"connect", "link", "bridge", "连接"}, "connects to"},
}

// splitSentences breaks normalized text into non-empty sentence spans.
func splitSentences(text string) []string {
	parts := reSentenceEnd.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// mention is one located entity occurrence within a sentence.
type mention struct {
	key   string
	index int
}

// minedRelation is an aggregated (source, target, relation) triple with
// its co-mention count.
type minedRelation struct {
	sourceKey string
	targetKey string
	relation  string
	weight    int
}

// relationForSentence picks a relation label from the keyword table, or
// the generic label when nothing matches.
func relationForSentence(sentence string) string {
	folded := strings.ToLower(sentence)
	for _, rule := range relationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) {
				return rule.label
			}
		}
	}
	return "related"
}

// locateMentions finds each candidate label's first occurrence in the
// sentence. Longest labels match first and claim their span, so a shorter
// label never matches inside a longer one ("Service" inside
// "AuthService"). Mentions come back ordered left to right.
func locateMentions(sentence string, labels []string) []mention {
	folded := strings.ToLower(sentence)
	masked := []byte(folded)

	ordered := make([]string, len(labels))
	copy(ordered, labels)
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i]) != len(ordered[j]) {
			return len(ordered[i]) > len(ordered[j])
		}
		return ordered[i] < ordered[j]
	})

	var mentions []mention
	for _, label := range ordered {
		needle := strings.ToLower(label)
		if needle == "" {
			continue
		}
		idx := strings.Index(string(masked), needle)
		if idx < 0 {
			continue
		}
		for i := idx; i < idx+len(needle); i++ {
			masked[i] = 0
		}
		mentions = append(mentions, mention{key: candidateKey(label), index: idx})
	}

	sort.Slice(mentions, func(i, j int) bool { return mentions[i].index < mentions[j].index })
	return mentions
}

// mineRelations walks the sentences of normalized text and links each
// adjacent pair of distinct entity mentions with the sentence's relation
// label. Repeated triples accumulate weight instead of duplicating.
//
// Only adjacent mentions are linked: a sentence naming three entities
// yields two edges, not three. Non-adjacent co-mentions stay unlinked on
// purpose, as a noise-reduction choice, so do not "fix" this to pairwise.
func mineRelations(text string, labels []string) ([]minedRelation, int) {
	sentences := splitSentences(text)

	byTriple := map[string]*minedRelation{}
	var order []string

	for _, sentence := range sentences {
		mentions := locateMentions(sentence, labels)
		if len(mentions) < 2 {
			continue
		}
		relation := relationForSentence(sentence)
		for i := 0; i+1 < len(mentions); i++ {
			src, tgt := mentions[i].key, mentions[i+1].key
			if src == tgt {
				continue
			}
			tripleKey := src + "\x1f" + tgt + "\x1f" + relation
			if existing, ok := byTriple[tripleKey]; ok {
				existing.weight++
				continue
			}
			byTriple[tripleKey] = &minedRelation{
				sourceKey: src,
				targetKey: tgt,
				relation:  relation,
				weight:    1,
			}
			order = append(order, tripleKey)
		}
	}

	mined := make([]minedRelation, 0, len(order))
	for _, key := range order {
		mined = append(mined, *byTriple[key])
	}
	return mined, len(sentences)
}

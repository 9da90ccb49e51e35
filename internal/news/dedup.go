package news

import (
	"regexp"
	"strings"
)

const (
	similarityWindow    = 10
	similarityThreshold = 0.7
)

var reTitlePunct = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// TitleKey normalizes a title for duplicate detection: lower-cased, known
// prefixes removed, punctuation stripped, whitespace collapsed.
func TitleKey(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	for _, p := range titlePrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(s[len(p):])
		}
	}
	s = reTitlePunct.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// TokenSet splits s on whitespace into a set.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		set[f] = struct{}{}
	}
	return set
}

// Jaccard is |a∩b| / |a∪b|. Two empty sets score 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

// Deduplicate keeps the first of each group of duplicates, preserving order.
// An article is a duplicate if its URL or TitleKey was already accepted, or if
// its title tokens overlap any of the last 10 accepted titles by more than 0.7.
// The bounded window makes the result order dependent.
func Deduplicate(articles []Article) []Article {
	var (
		unique     = make([]Article, 0, len(articles))
		tokens     = make([]map[string]struct{}, 0, len(articles))
		seenURLs   = make(map[string]bool)
		seenTitles = make(map[string]bool)
	)

	for _, a := range articles {
		if seenURLs[a.URL] {
			continue
		}
		key := TitleKey(a.Title)
		if seenTitles[key] {
			continue
		}
		set := TokenSet(key)
		if similarToRecent(set, tokens) {
			continue
		}

		unique = append(unique, a)
		tokens = append(tokens, set)
		seenURLs[a.URL] = true
		seenTitles[key] = true
	}
	return unique
}

func similarToRecent(set map[string]struct{}, accepted []map[string]struct{}) bool {
	if len(set) == 0 {
		return false
	}
	start := max(0, len(accepted)-similarityWindow)
	for _, other := range accepted[start:] {
		if len(other) == 0 {
			continue
		}
		if Jaccard(set, other) > similarityThreshold {
			return true
		}
	}
	return false
}

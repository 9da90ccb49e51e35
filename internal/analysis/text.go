package analysis

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/deusflow/newslens/internal/news"
)

// articleText is the lower-cased title and snippet of an article.
func articleText(a news.Article) string {
	return strings.ToLower(a.Title + " " + a.Snippet)
}

// keywords returns the words of text that are made only of a-z and are at
// least 4 letters long. Words are maximal runs of Unicode letters, digits
// and underscores, so "covid19" and "café" are not keywords.
func keywords(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	out := words[:0]
	for _, w := range words {
		if len(w) >= 4 && isLowerASCII(w) {
			out = append(out, w)
		}
	}
	return out
}

func isLowerASCII(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// distinct keeps the first occurrence of each value, at most limit values
// (limit <= 0 means all).
func distinct(values []string, limit int) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func domains(articles []news.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.SourceDomain)
	}
	return out
}

type counted struct {
	key   string
	count int
}

// countOrdered counts values, ordered by count descending with ties in
// first-seen order.
func countOrdered(values []string) []counted {
	idx := make(map[string]int)
	var out []counted
	for _, v := range values {
		if i, ok := idx[v]; ok {
			out[i].count++
			continue
		}
		idx[v] = len(out)
		out = append(out, counted{key: v, count: 1})
	}
	sortCounted(out)
	return out
}

func sortCounted(c []counted) {
	slices.SortStableFunc(c, func(x, y counted) int {
		return cmp.Compare(y.count, x.count)
	})
}

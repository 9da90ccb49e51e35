package news

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deusflow/newslens/internal/apperr"
)

var (
	reTags       = regexp.MustCompile(`<[^>]+>`)
	reURLs       = regexp.MustCompile(`https?://\S+`)
	reWhitespace = regexp.MustCompile(`\s+`)

	// Wire-service tags and boilerplate that leaks into provider snippets.
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\(AP\)`),
		regexp.MustCompile(`(?i)\(Reuters\)`),
		regexp.MustCompile(`(?i)\(Bloomberg\)`),
		regexp.MustCompile(`(?i)Read more:.*`),
		regexp.MustCompile(`(?i)Click here.*`),
		regexp.MustCompile(`(?i)Subscribe.*`),
		regexp.MustCompile(`(?i)Advertisement\s*`),
		regexp.MustCompile(`(?i)Sign up.*`),
		regexp.MustCompile(`(?i)Follow us.*`),
	}

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
)

// maxCleanPasses bounds CleanText. Entity decoding can expose new markup, so
// one pass is not always a fixpoint.
const maxCleanPasses = 4

// CleanText strips markup, embedded URLs and boilerplate and collapses
// whitespace. CleanText(CleanText(s)) == CleanText(s).
func CleanText(s string) string {
	for range maxCleanPasses {
		next := cleanOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanOnce(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = reTags.ReplaceAllString(s, " ")
	s = reURLs.ReplaceAllString(s, " ")
	for _, re := range noisePatterns {
		s = re.ReplaceAllString(s, "")
	}
	s = quoteReplacer.Replace(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Normalize converts a provider result into an Article without scoring it.
func Normalize(raw RawArticle) (Article, error) {
	rawURL := strings.TrimSpace(raw.URL)
	if rawURL == "" {
		return Article{}, apperr.ErrMissingURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Article{}, fmt.Errorf("%w: %v", apperr.ErrInvalidURL, err)
	}

	domain := canonicalDomain(raw.SourceDomain)
	if IsUnknownSource(domain) {
		domain = canonicalDomain(u.Hostname())
	}

	a := Article{
		Title:        CleanText(raw.Title),
		URL:          rawURL,
		SourceDomain: domain,
		SourceName:   sourceName(raw.Source, domain),
		Snippet:      strings.TrimSpace(truncateRunes(CleanText(raw.Content), maxSnippetRunes)),
	}
	if raw.PublishedAt != nil {
		t := raw.PublishedAt.UTC()
		a.PublishedAt = &t
	}
	return a, nil
}

func canonicalDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}

func sourceName(provided, domain string) string {
	if !IsUnknownSource(provided) {
		return strings.TrimSpace(provided)
	}
	if name, ok := domainNames[domain]; ok {
		return name
	}
	return GenericSourceName(domain)
}

// GenericSourceName turns "the-verge.com" into "The Verge".
func GenericSourceName(domain string) string {
	base, _, _ := strings.Cut(domain, ".")
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	if strings.TrimSpace(base) == "" {
		return "Unknown"
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.Und).String(base)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

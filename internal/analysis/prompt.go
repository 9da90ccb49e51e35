package analysis

import (
	"fmt"
	"strings"

	"github.com/deusflow/newslens/internal/news"
)

// ArticleContent renders the articles as the numbered block the prompt embeds.
func ArticleContent(articles []news.Article) string {
	parts := make([]string, 0, len(articles))
	for i, a := range articles {
		published := "Unknown"
		if a.PublishedAt != nil {
			published = a.PublishedAt.Format("2006-01-02 15:04")
		}
		content := a.Snippet
		if content == "" {
			content = "No content available"
		}
		parts = append(parts, fmt.Sprintf(
			"Article %d:\nTitle: %s\nSource: %s (%s)\nPublished: %s\nURL: %s\nContent: %s",
			i+1, a.Title, a.SourceName, a.SourceDomain, published, a.URL, content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// BuildPrompt asks the model for a JSON analysis of the articles about query.
func BuildPrompt(query string, articles []news.Article) string {
	n := len(articles)
	return fmt.Sprintf(promptTemplate,
		n, query,
		ArticleContent(articles),
		n,
		strings.Join(distinct(domains(articles), 0), ", "),
	)
}

const promptTemplate = `You are an expert news analyst. Analyze the following %d news articles about %q and provide a comprehensive analysis.

ARTICLES TO ANALYZE:
%s

ANALYSIS REQUIREMENTS:

1. COMPREHENSIVE SUMMARY (400-600 words): a coherent, objective narrative of the current situation
   covering key developments, trends and implications, referencing multiple sources.

2. COMPONENT ANALYSIS: for each significant point mentioned across articles give the point, the
   number of articles mentioning it (1-%d), a confidence between 0.0 and 1.0, the source domains
   and a category.

3. SOURCE CONTRIBUTION ANALYSIS: unique insights per source, corroborated facts and an overall
   reliability note.

4. KEY EVENTS TIMELINE: chronological events with ISO timestamps when available.

GUIDELINES:
- Report facts, not speculation.
- Flag conflicting viewpoints.
- Prefer insights corroborated by several sources and keep frequency counts accurate.
- Use these source domains: %s

Respond with JSON only, in exactly this shape:
{
  "summary": "string",
  "insights": [
    {"point": "string", "frequency": 1, "confidence": 0.0, "sources": ["domain"], "category": "string"}
  ],
  "source_analysis": {
    "unique_contributions": {"domain": "string"},
    "corroborations": ["string"],
    "reliability_notes": "string"
  },
  "timeline_events": [
    {"event": "string", "timestamp": "ISO 8601", "sources": ["domain"]}
  ],
  "analysis_metadata": {
    "confidence_score": 0.0,
    "coverage_assessment": "comprehensive|partial|limited",
    "conflicting_viewpoints": false
  }
}`

package analysis

import (
	"time"

	"github.com/deusflow/newslens/internal/news"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ts(t time.Time) *time.Time { return &t }

func article(title, domain string, published *time.Time) news.Article {
	return news.Article{
		Title:        title,
		URL:          "https://" + domain + "/" + title,
		SourceName:   domain,
		SourceDomain: domain,
		PublishedAt:  published,
		QualityScore: 0.6,
	}
}

func points(insights []Insight) []string {
	out := make([]string, 0, len(insights))
	for _, in := range insights {
		out = append(out, in.Point)
	}
	return out
}

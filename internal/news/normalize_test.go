package news

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newslens/internal/apperr"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"entities and tags", "<p>Markets rally &amp; close <b>higher</b></p>", "Markets rally & close higher"},
		{"wire tag and url", "WASHINGTON (AP) Lawmakers met https://t.co/abc today", "WASHINGTON Lawmakers met today"},
		{"trailing boilerplate", "The plan passed. Read more: https://example.com/more", "The plan passed."},
		{"case insensitive noise", "Shares rose ADVERTISEMENT after the call", "Shares rose after the call"},
		{"curly quotes", "“Hello” he said, ‘ok’", `"Hello" he said, 'ok'`},
		{"whitespace", "  a \n\t b  ", "a b"},
		{"double escaped markup", "&amp;lt;b&amp;gt;bold", "bold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	inputs := []string{
		"<div>Breaking (Reuters) &quot;quoted&quot; text</div> Subscribe now",
		"&amp;lt;script&amp;gt; alert",
		"Follow us on social. Sign up for alerts",
		"plain text with   spaces",
		"<<b>>nested<</b>>",
	}
	for _, in := range inputs {
		once := CleanText(in)
		assert.Equal(t, once, CleanText(once), "input %q", in)
	}
}

func TestNormalize_SourceInfo(t *testing.T) {
	tests := []struct {
		name       string
		raw        RawArticle
		wantDomain string
		wantName   string
	}{
		{
			name:       "known domain from url",
			raw:        RawArticle{URL: "https://www.Reuters.com/world/a"},
			wantDomain: "reuters.com",
			wantName:   "Reuters",
		},
		{
			name:       "sentinel source name",
			raw:        RawArticle{URL: "https://apnews.com/x", Source: "Unknown"},
			wantDomain: "apnews.com",
			wantName:   "Associated Press",
		},
		{
			name:       "provided name wins",
			raw:        RawArticle{URL: "https://bbc.com/x", Source: "  BBC World  "},
			wantDomain: "bbc.com",
			wantName:   "BBC World",
		},
		{
			name:       "generic name",
			raw:        RawArticle{URL: "https://www.the-daily_star.co.uk/x"},
			wantDomain: "the-daily_star.co.uk",
			wantName:   "The Daily Star",
		},
		{
			name:       "sentinel domain falls back to url host",
			raw:        RawArticle{URL: "https://www.npr.org/x", SourceDomain: "n/a"},
			wantDomain: "npr.org",
			wantName:   "NPR",
		},
		{
			name:       "provided domain",
			raw:        RawArticle{URL: "https://news.google.com/x", SourceDomain: "WWW.WSJ.com"},
			wantDomain: "wsj.com",
			wantName:   "The Wall Street Journal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDomain, a.SourceDomain)
			assert.Equal(t, tt.wantName, a.SourceName)
		})
	}
}

func TestNormalize_ConcurrentGenericNames(t *testing.T) {
	raw := RawArticle{
		Title: "Harbour works delayed again",
		URL:   "https://www.the-daily-news.co.uk/harbour",
	}

	const workers = 16
	var wg sync.WaitGroup
	names := make([][]string, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				a, err := Normalize(raw)
				if err != nil {
					names[w] = append(names[w], err.Error())
					continue
				}
				names[w] = append(names[w], a.SourceName)
			}
		}()
	}
	wg.Wait()

	for _, got := range names {
		require.Len(t, got, 200)
		for _, name := range got {
			assert.Equal(t, "The Daily News", name)
		}
	}
}

func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize(RawArticle{Title: "No link at all here"})
	assert.ErrorIs(t, err, apperr.ErrMissingURL)

	_, err = Normalize(RawArticle{URL: "http://[::1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidURL)
}

func TestNormalize_SnippetCapAndTimestamp(t *testing.T) {
	long := make([]rune, 800)
	for i := range long {
		long[i] = 'é'
	}
	local := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	a, err := Normalize(RawArticle{
		Title:       "A reasonably long headline",
		URL:         "https://bbc.com/a",
		Content:     string(long),
		PublishedAt: &local,
	})
	require.NoError(t, err)

	assert.Len(t, []rune(a.Snippet), 500)
	require.NotNil(t, a.PublishedAt)
	assert.Equal(t, time.UTC, a.PublishedAt.Location())
	assert.Equal(t, 10, a.PublishedAt.Hour())
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"2024-05-01T10:00:00Z",
		"2024-05-01T12:00:00+02:00",
		"2024-05-01T10:00:00",
		"2024-05-01 10:00:00",
		"Wed, 01 May 2024 10:00:00 +0000",
	} {
		got := ParseTimestamp(in)
		require.NotNil(t, got, in)
		assert.True(t, want.Equal(*got), in)
		assert.Equal(t, time.UTC, got.Location(), in)
	}

	assert.Nil(t, ParseTimestamp(""))
	assert.Nil(t, ParseTimestamp("yesterday"))
}

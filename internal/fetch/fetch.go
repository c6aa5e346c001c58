// Package fetch downloads podcast transcripts into raw corpus shards.
// Feeds carrying the podcast namespace advertise transcripts per episode;
// each one becomes a record keyed by the episode link.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/podscript/wrangle/pkg/wrangle/record"
)

// Episode is one feed item with a transcript link.
type Episode struct {
	Title         string
	URL           string // episode link, the merge key downstream
	TranscriptURL string
}

// Fetcher downloads transcripts from podcast feeds.
type Fetcher struct {
	feeds  *gofeed.Parser
	client *http.Client
	delay  time.Duration
	limit  int
	log    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client used for transcript downloads.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithDelay sets the pause between transcript downloads. Default 50ms.
func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.delay = d }
}

// WithLimit caps the number of episodes fetched per feed. 0 means all.
func WithLimit(n int) Option {
	return func(f *Fetcher) { f.limit = n }
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		feeds:  gofeed.NewParser(),
		client: &http.Client{Timeout: 30 * time.Second},
		delay:  50 * time.Millisecond,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Episodes lists the feed's episodes that carry a transcript link.
func (f *Fetcher) Episodes(ctx context.Context, feedURL string) ([]Episode, error) {
	feed, err := f.feeds.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}
	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}

	var episodes []Episode
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		ep := Episode{Title: item.Title, URL: item.Link}
		if ts, ok := item.Extensions["podcast"]["transcript"]; ok && len(ts) > 0 {
			ep.TranscriptURL = ts[0].Attrs["url"]
		}
		if ep.TranscriptURL == "" {
			f.log.Warn("episode has no transcript", "title", item.Title)
			continue
		}
		episodes = append(episodes, ep)
	}

	if len(episodes) == 0 {
		return nil, fmt.Errorf("no transcripts found in feed items")
	}
	return episodes, nil
}

// FetchCorpus downloads every transcript of a feed into one JSONL shard.
// Episodes failing to download are logged and skipped. Returns the number
// of records written.
func (f *Fetcher) FetchCorpus(ctx context.Context, feedURL, outPath string) (int, error) {
	episodes, err := f.Episodes(ctx, feedURL)
	if err != nil {
		return 0, err
	}
	if f.limit > 0 && len(episodes) > f.limit {
		episodes = episodes[:f.limit]
	}

	w, err := record.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer w.Close()

	for i, ep := range episodes {
		if err := ctx.Err(); err != nil {
			return w.Count(), err
		}

		text, err := f.fetchTranscript(ctx, ep.TranscriptURL)
		if err != nil {
			f.log.Warn("skipping episode", "title", ep.Title, "error", err)
			continue
		}
		if text == "" {
			f.log.Warn("skipping empty transcript", "title", ep.Title)
			continue
		}

		if err := w.Write(record.Document{Text: text, URL: ep.URL}); err != nil {
			return w.Count(), err
		}

		if (i+1)%10 == 0 {
			f.log.Info("fetch progress", "done", i+1, "total", len(episodes))
		}

		// Be nice to the host
		time.Sleep(f.delay)
	}

	if w.Count() == 0 {
		return 0, fmt.Errorf("no transcripts downloaded from %s", feedURL)
	}
	if err := w.Close(); err != nil {
		return w.Count(), err
	}

	f.log.Info("fetched feed", "feed", feedURL, "episodes", w.Count(), "output", outPath)
	return w.Count(), nil
}

func (f *Fetcher) fetchTranscript(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	text := string(body)
	if isHTML(resp.Header.Get("Content-Type"), text) {
		text = StripHTML(text)
	}
	return strings.TrimSpace(text), nil
}

func isHTML(contentType, body string) bool {
	if strings.Contains(contentType, "html") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(body), "<")
}

// StripHTML extracts the text content from an HTML document. Script and
// style bodies are dropped.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}

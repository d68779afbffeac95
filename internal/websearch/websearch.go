// Package websearch fetches live reference snippets from a public
// instant-answer API.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ziadkadry99/product-advisor/internal/logger"
)

// MaxSources caps the number of references attached to a chat turn.
const MaxSources = 3

// Source is a search result used to ground an assistant response.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher returns references for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) []Source
}

// Client queries a DuckDuckGo-compatible instant-answer endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a Client for endpoint with the given request timeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Search never fails: any transport, status or decoding problem is logged
// and yields no sources.
func (c *Client) Search(ctx context.Context, query string) []Source {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	sources, err := c.search(ctx, query)
	if err != nil {
		logger.Warn("web search failed", "query", query, "error", err)
		return []Source{}
	}
	return sources
}

func (c *Client) search(ctx context.Context, query string) ([]Source, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return Parse(data), nil
}

// Parse extracts usable entries from a decoded instant-answer document:
// Results first, then each RelatedTopics entry followed by its nested
// Topics. Entries need both FirstURL and Text. At most MaxSources are kept.
func Parse(data map[string]interface{}) []Source {
	out := []Source{}

	for _, item := range asSlice(data["Results"]) {
		out = appendTopic(out, item)
	}

	for _, item := range asSlice(data["RelatedTopics"]) {
		out = appendTopic(out, item)
		if m, ok := item.(map[string]interface{}); ok {
			for _, topic := range asSlice(m["Topics"]) {
				out = appendTopic(out, topic)
			}
		}
	}

	if len(out) > MaxSources {
		out = out[:MaxSources]
	}
	return out
}

func appendTopic(out []Source, item interface{}) []Source {
	m, ok := item.(map[string]interface{})
	if !ok {
		return out
	}
	link := getString(m["FirstURL"])
	text := getString(m["Text"])
	if link == "" || text == "" {
		return out
	}
	return append(out, Source{Title: text, URL: link, Snippet: text})
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func getString(v interface{}) string {
	s, _ := v.(string)
	return s
}

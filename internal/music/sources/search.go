package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"github.com/keshon/basement/pkg/retrylimit"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// APISearcher uses the YouTube Data API search endpoint.
type APISearcher struct {
	svc *ytapi.Service
}

func NewAPISearcher(ctx context.Context, opts ...option.ClientOption) (*APISearcher, error) {
	svc, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube data api: %w", err)
	}
	return &APISearcher{svc: svc}, nil
}

func (s *APISearcher) Search(ctx context.Context, query string) (string, error) {
	resp, err := s.svc.Search.List([]string{"id"}).
		Q(query).
		Type("video").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube search: %w", err)
	}
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			return "https://www.youtube.com/watch?v=" + item.Id.VideoId, nil
		}
	}
	return "", retrylimit.Fatal(fmt.Errorf("%w for %q", ErrNotFound, query))
}

// maxResultsPage caps how much of the results page is read.
const maxResultsPage = 4 << 20

var videoPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)

// WebSearcher scrapes the first video off the YouTube results page.
type WebSearcher struct {
	BaseURL string
	Client  *http.Client
}

func NewWebSearcher(client *http.Client) *WebSearcher {
	return &WebSearcher{BaseURL: "https://www.youtube.com", Client: client}
}

func (s *WebSearcher) Search(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", s.BaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", retrylimit.Fatal(err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("youtube search: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResultsPage))
	if err != nil {
		return "", fmt.Errorf("youtube search: %w", err)
	}

	m := videoPattern.FindSubmatch(body)
	if m == nil {
		return "", retrylimit.Fatal(fmt.Errorf("%w for %q", ErrNotFound, query))
	}
	return "https://www.youtube.com/watch?v=" + string(m[1]), nil
}

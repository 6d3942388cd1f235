// Package sources turns user queries into playable tracks.
package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/keshon/basement/internal/music"
	"github.com/keshon/basement/pkg/retrylimit"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

var (
	ErrNotFound    = errors.New("no track found")
	ErrUnsupported = errors.New("unsupported stream")
	ErrEmptyQuery  = errors.New("empty query")
)

// Source resolves URLs it recognises.
type Source interface {
	Name() string
	Match(rawURL string) bool
	Resolve(ctx context.Context, rawURL string) (music.Track, error)
}

// Searcher finds the page URL of the best match for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

type Options struct {
	// YouTubeAPIKey selects the Data API searcher; without it the results page
	// is scraped.
	YouTubeAPIKey string
	// Proxy is an http, https, socks5 or socks4 URL used for YouTube traffic.
	Proxy       string
	Timeout     time.Duration
	MaxAttempts int
}

// Resolver routes a query to the right source and retries transient failures.
type Resolver struct {
	log      zerolog.Logger
	youtube  Source
	direct   Source
	searcher Searcher
	limiter  *retrylimit.AdaptiveLimiter
	retry    retrylimit.Config
	timeout  time.Duration
}

// New builds the production resolver.
func New(ctx context.Context, log zerolog.Logger, opts Options) (*Resolver, error) {
	ytClient, err := NewHTTPClient(opts.Proxy, 15*time.Second)
	if err != nil {
		return nil, err
	}

	var searcher Searcher
	if opts.YouTubeAPIKey != "" {
		searcher, err = NewAPISearcher(ctx, option.WithAPIKey(opts.YouTubeAPIKey))
		if err != nil {
			return nil, err
		}
	} else {
		searcher = NewWebSearcher(ytClient)
	}

	cfg := retrylimit.DefaultConfig()
	if opts.MaxAttempts > 0 {
		cfg.MaxAttempts = opts.MaxAttempts
	}

	r := NewResolver(log, NewYouTube(ytClient), NewDirect(&http.Client{Timeout: 5 * time.Second}), searcher, cfg)
	r.timeout = opts.Timeout
	r.log.Info().
		Bool("proxy", opts.Proxy != "").
		Bool("data_api", opts.YouTubeAPIKey != "").
		Msg("track resolver ready")
	return r, nil
}

// NewResolver wires explicit sources; New is the usual entry point.
func NewResolver(log zerolog.Logger, youtube, direct Source, searcher Searcher, retry retrylimit.Config) *Resolver {
	return &Resolver{
		log:      log.With().Str("component", "resolver").Logger(),
		youtube:  youtube,
		direct:   direct,
		searcher: searcher,
		limiter:  retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		retry:    retry,
	}
}

// Resolve looks up a URL or search term. A query starting with http:// or
// https:// is a URL; YouTube URLs get YouTube metadata, any other URL is
// played as a direct stream. Everything else is searched on YouTube.
func (r *Resolver) Resolve(ctx context.Context, query string) (music.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return music.Track{}, ErrEmptyQuery
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var track music.Track
	err := retrylimit.Do(ctx, r.retry, r.limiter, func(ctx context.Context) error {
		t, err := r.resolveOnce(ctx, query)
		if err != nil {
			return err
		}
		track = t
		return nil
	})
	if err != nil {
		return music.Track{}, fmt.Errorf("resolve %q: %w", query, err)
	}

	r.log.Debug().Str("query", query).Str("source", track.Source).Str("title", track.Title).Msg("track resolved")
	return track, nil
}

func (r *Resolver) resolveOnce(ctx context.Context, query string) (music.Track, error) {
	if !isURL(query) {
		pageURL, err := r.searcher.Search(ctx, query)
		if err != nil {
			return music.Track{}, err
		}
		return r.youtube.Resolve(ctx, pageURL)
	}
	if r.youtube.Match(query) {
		return r.youtube.Resolve(ctx, query)
	}
	return r.direct.Resolve(ctx, query)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// statusError carries an HTTP status so retrylimit can classify it.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.url, e.code)
}

func (e *statusError) StatusCode() int { return e.code }

// checkStatus turns a bad response into an error. Client errors other than 429
// will not get better with a retry.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	err := &statusError{code: resp.StatusCode, url: resp.Request.URL.Redacted()}
	if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return retrylimit.Fatal(fmt.Errorf("%w: %w", ErrNotFound, err))
	}
	return err
}

package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keshon/basement/internal/music"
	"github.com/keshon/basement/pkg/retrylimit"
	"github.com/rs/zerolog"
)

type fakeSource struct {
	name    string
	match   func(string) bool
	errs    []error
	calls   []string
	results music.Track
}

func (f *fakeSource) Name() string        { return f.name }
func (f *fakeSource) Match(u string) bool { return f.match != nil && f.match(u) }

func (f *fakeSource) Resolve(_ context.Context, u string) (music.Track, error) {
	f.calls = append(f.calls, u)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return music.Track{}, err
	}
	t := f.results
	t.URL = u
	t.Source = f.name
	return t, nil
}

type fakeSearcher struct {
	url     string
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, q string) (string, error) {
	f.queries = append(f.queries, q)
	return f.url, f.err
}

func testRetry() retrylimit.Config {
	return retrylimit.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 1}
}

func newTestResolver() (*Resolver, *fakeSource, *fakeSource, *fakeSearcher) {
	yt := &fakeSource{name: music.SourceYouTube, match: (&YouTube{}).Match}
	direct := &fakeSource{name: music.SourceDirect, match: isURL}
	search := &fakeSearcher{url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
	return NewResolver(zerolog.Nop(), yt, direct, search, testRetry()), yt, direct, search
}

func TestResolveRouting(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantSource string
		wantSearch bool
	}{
		{"youtube url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", music.SourceYouTube, false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", music.SourceYouTube, false},
		{"radio url", "http://stream.example.com/live.mp3", music.SourceDirect, false},
		{"search term", "never gonna give you up", music.SourceYouTube, true},
		{"not quite a url", "www.example.com/song.mp3", music.SourceYouTube, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, search := newTestResolver()

			track, err := r.Resolve(context.Background(), "  "+tt.query+" ")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if track.Source != tt.wantSource {
				t.Errorf("expected source %s, got %s", tt.wantSource, track.Source)
			}
			if searched := len(search.queries) > 0; searched != tt.wantSearch {
				t.Errorf("search used = %v, want %v", searched, tt.wantSearch)
			}
			if tt.wantSearch && search.queries[0] != tt.query {
				t.Errorf("query should be trimmed, got %q", search.queries[0])
			}
		})
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	r, _, _, _ := newTestResolver()
	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestResolveRetriesTransientFailures(t *testing.T) {
	r, _, direct, _ := newTestResolver()
	direct.errs = []error{errors.New("connection reset")}

	if _, err := r.Resolve(context.Background(), "http://stream.example.com/live"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(direct.calls) != 2 {
		t.Errorf("expected one retry, got %d calls", len(direct.calls))
	}
}

func TestResolveDoesNotRetryNotFound(t *testing.T) {
	r, yt, _, search := newTestResolver()
	search.err = retrylimit.Fatal(ErrNotFound)

	_, err := r.Resolve(context.Background(), "no such song")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(search.queries) != 1 || len(yt.calls) != 0 {
		t.Errorf("expected a single search and no lookups, got %d/%d", len(search.queries), len(yt.calls))
	}
}

func TestResolveGivesUp(t *testing.T) {
	r, _, direct, _ := newTestResolver()
	boom := errors.New("boom")
	direct.errs = []error{boom, boom, boom, boom}

	_, err := r.Resolve(context.Background(), "http://stream.example.com/live")
	if !errors.Is(err, boom) {
		t.Fatalf("expected last error, got %v", err)
	}
	if len(direct.calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", len(direct.calls))
	}
}

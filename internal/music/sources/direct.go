package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/keshon/basement/internal/music"
	"github.com/keshon/basement/pkg/retrylimit"
)

var streamContentTypes = []string{
	"audio/",
	"video/",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/ogg",
	"application/x-scpls",
	"application/xspf+xml",
	"application/octet-stream",
}

var playlistExts = []string{".m3u", ".m3u8", ".pls", ".xspf"}

// Direct plays any URL that serves audio, such as radio streams or files.
type Direct struct {
	client *http.Client
}

func NewDirect(client *http.Client) *Direct {
	return &Direct{client: client}
}

func (d *Direct) Name() string { return music.SourceDirect }

func (d *Direct) Match(rawURL string) bool { return isURL(rawURL) }

// Resolve probes the URL with HEAD, falling back to GET for servers that
// reject HEAD, and accepts it when the content type looks like media.
func (d *Direct) Resolve(ctx context.Context, rawURL string) (music.Track, error) {
	resp, err := d.probe(ctx, rawURL)
	if err != nil {
		return music.Track{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return music.Track{}, err
	}

	final := resp.Request.URL
	contentType := resp.Header.Get("Content-Type")
	if !isStreamType(contentType) && !isPlaylist(final.Path) {
		return music.Track{}, retrylimit.Fatal(fmt.Errorf("%w: content type %q", ErrUnsupported, contentType))
	}

	title := resp.Header.Get("icy-name")
	if title == "" {
		title = titleFromURL(final)
	}

	return music.Track{
		Title:     title,
		URL:       rawURL,
		StreamURL: final.String(),
		Source:    music.SourceDirect,
	}, nil
}

func (d *Direct) probe(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, retrylimit.Fatal(fmt.Errorf("%w: %w", ErrNotFound, err))
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := d.client.Do(req)
	if err == nil && resp.StatusCode < 400 {
		return resp, nil
	}
	if resp != nil {
		resp.Body.Close()
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, retrylimit.Fatal(err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	// The body is never read; live streams do not end.
	resp, err = d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", rawURL, err)
	}
	return resp, nil
}

func isStreamType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	for _, t := range streamContentTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

func isPlaylist(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range playlistExts {
		if ext == e {
			return true
		}
	}
	return false
}

func titleFromURL(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return u.Host
	}
	if name, err := url.PathUnescape(base); err == nil {
		base = name
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/keshon/basement/internal/music"
	"github.com/keshon/basement/pkg/retrylimit"
	youtube "github.com/kkdai/youtube/v2"
)

var youtubeURLPattern = regexp.MustCompile(`^https?://(?:www\.|music\.|m\.)?(?:youtube\.com|youtu\.be)/\S+`)

// VideoClient is the part of the kkdai client the YouTube source uses.
type VideoClient interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

type YouTube struct {
	client VideoClient
}

func NewYouTube(httpClient *http.Client) *YouTube {
	return &YouTube{client: &youtube.Client{HTTPClient: httpClient}}
}

// NewYouTubeWithClient is for callers that bring their own client.
func NewYouTubeWithClient(c VideoClient) *YouTube {
	return &YouTube{client: c}
}

func (y *YouTube) Name() string { return music.SourceYouTube }

func (y *YouTube) Match(rawURL string) bool {
	return youtubeURLPattern.MatchString(rawURL)
}

func (y *YouTube) Resolve(ctx context.Context, rawURL string) (music.Track, error) {
	id, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return music.Track{}, retrylimit.Fatal(fmt.Errorf("%w: %w", ErrNotFound, err))
	}

	video, err := y.client.GetVideoContext(ctx, id)
	if err != nil {
		return music.Track{}, classifyYouTube(err)
	}

	format, err := audioFormat(video.Formats)
	if err != nil {
		return music.Track{}, retrylimit.Fatal(err)
	}

	streamURL, err := y.client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return music.Track{}, classifyYouTube(err)
	}

	return music.Track{
		Title:     video.Title,
		Artist:    video.Author,
		URL:       "https://www.youtube.com/watch?v=" + video.ID,
		StreamURL: streamURL,
		Thumbnail: thumbnail(video.Thumbnails),
		Duration:  video.Duration,
		Source:    music.SourceYouTube,
	}, nil
}

// audioFormat prefers the audio-only stream with the highest bitrate and falls
// back to any format that carries audio.
func audioFormat(formats youtube.FormatList) (*youtube.Format, error) {
	withAudio := formats.WithAudioChannels()
	if len(withAudio) == 0 {
		return nil, fmt.Errorf("%w: video has no audio formats", ErrUnsupported)
	}

	var best *youtube.Format
	for i := range withAudio {
		f := &withAudio[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if best == nil {
		best = &withAudio[0]
	}
	return best, nil
}

func thumbnail(thumbs youtube.Thumbnails) string {
	var best youtube.Thumbnail
	for _, t := range thumbs {
		if t.Width >= best.Width {
			best = t
		}
	}
	return best.URL
}

// classifyYouTube marks errors that a retry cannot fix as fatal.
func classifyYouTube(err error) error {
	var playability youtube.ErrPlayabiltyStatus
	var status youtube.ErrUnexpectedStatusCode
	switch {
	case errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrNotPlayableInEmbed),
		errors.As(err, &playability):
		return retrylimit.Fatal(fmt.Errorf("%w: %w", ErrNotFound, err))
	case errors.As(err, &status):
		code := int(status)
		if code == http.StatusNotFound {
			return retrylimit.Fatal(fmt.Errorf("%w: %w", ErrNotFound, err))
		}
		return fmt.Errorf("%w: %w", &statusError{code: code, url: "youtube"}, err)
	default:
		return err
	}
}

package music

import (
	"fmt"
	"time"
)

const (
	SourceYouTube = "youtube"
	SourceDirect  = "direct"
)

// Track is one playable item with the metadata shown to users.
type Track struct {
	Title       string
	Artist      string
	URL         string // page the user can open
	StreamURL   string // what ffmpeg reads
	Thumbnail   string
	Duration    time.Duration
	Source      string
	RequestedBy string
}

// Label renders the track for embeds, falling back when metadata is missing.
func (t Track) Label() string {
	switch {
	case t.Title != "" && t.URL != "":
		return fmt.Sprintf("[`%s`](%s)", t.Title, t.URL)
	case t.Title != "":
		return "`" + t.Title + "`"
	case t.URL != "":
		return t.URL
	default:
		return "Unknown track"
	}
}

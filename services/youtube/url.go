package youtube

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindVideo    Kind = "video"
	KindChannel  Kind = "channel"
	KindPlaylist Kind = "playlist"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsBatch() bool {
	return k == KindChannel || k == KindPlaylist
}

var ErrInvalidURL = errors.New("Invalid YouTube URL")

const shortLinkHost = "youtu.be"

var channelPrefixes = []string{"/channel/", "/@", "/c/"}

// Target is what a YouTube URL points at. Handle is set for /@name channel
// URLs, ID then holds the name without the leading @.
type Target struct {
	Kind   Kind
	ID     string
	Handle bool
}

// Resolve classifies a YouTube URL. Rules are checked in order: playlist list
// parameter, channel path, video parameter or short link.
func Resolve(rawURL string) (*Target, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, ErrInvalidURL
	}
	q := u.Query()
	if q.Has("list") {
		return target(KindPlaylist, q.Get("list"))
	}
	for _, p := range channelPrefixes {
		if strings.HasPrefix(u.Path, p) {
			id := lastSegment(u.Path)
			t, err := target(KindChannel, strings.TrimPrefix(id, "@"))
			if err != nil {
				return nil, err
			}
			t.Handle = strings.HasPrefix(id, "@")
			return t, nil
		}
	}
	if q.Has("v") || strings.EqualFold(u.Hostname(), shortLinkHost) {
		id := q.Get("v")
		if id == "" {
			id = strings.TrimPrefix(u.Path, "/")
		}
		return target(KindVideo, id)
	}
	return nil, ErrInvalidURL
}

func target(k Kind, id string) (*Target, error) {
	if id == "" {
		return nil, ErrInvalidURL
	}
	return &Target{Kind: k, ID: id}, nil
}

func lastSegment(p string) string {
	var last string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			last = s
		}
	}
	return last
}

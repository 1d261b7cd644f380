package youtube

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/lazymap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

const (
	youtubeApiKeyFlag      = "youtube-api-key"
	youtubeApiEndpointFlag = "youtube-api-endpoint"
)

// PageSize is the fixed number of playlist items requested per page.
const PageSize = 20

var videoParts = []string{"snippet", "contentDetails", "status"}

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   youtubeApiKeyFlag,
			Usage:  "youtube data api key",
			Value:  "",
			EnvVar: "YOUTUBE_API_KEY",
		},
		cli.StringFlag{
			Name:   youtubeApiEndpointFlag,
			Usage:  "youtube data api endpoint override",
			Value:  "",
			EnvVar: "YOUTUBE_API_ENDPOINT",
		},
	)
}

var ErrNotFound = errors.New("not found")

// NotFoundError carries a user facing message and matches ErrNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FetchError is a failure reported by the metadata provider. Its message is
// the provider's own.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	var gerr *googleapi.Error
	if errors.As(e.Err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// VideoPreview is the display metadata of a single video.
type VideoPreview struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     string `json:"duration"`
	MadeForKids  bool   `json:"madeForKids"`
}

func (p *VideoPreview) DurationSeconds() (int, bool) {
	return ParseISODuration(p.Duration)
}

func (p *VideoPreview) FormattedDuration() string {
	return FormatISODuration(p.Duration)
}

type Batch struct {
	Type          Kind            `json:"type"`
	Videos        []*VideoPreview `json:"videos"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
	TotalResults  *int64          `json:"totalResults,omitempty"`
}

type Api struct {
	svc      *yt.Service
	channels lazymap.LazyMap[string]
	uploads  lazymap.LazyMap[string]
}

func New(c *cli.Context) (*Api, error) {
	key := c.String(youtubeApiKeyFlag)
	if key == "" {
		return nil, errors.New("youtube api key is not set")
	}
	opts := []option.ClientOption{option.WithAPIKey(key)}
	if e := c.String(youtubeApiEndpointFlag); e != "" {
		log.Infof("youtube api endpoint %v", e)
		opts = append(opts, option.WithEndpoint(e))
	}
	return NewWithOptions(context.Background(), opts...)
}

func NewWithOptions(ctx context.Context, opts ...option.ClientOption) (*Api, error) {
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init youtube service")
	}
	return &Api{
		svc: svc,
		channels: lazymap.New[string](&lazymap.Config{
			Expire:      10 * time.Minute,
			ErrorExpire: 10 * time.Second,
		}),
		uploads: lazymap.New[string](&lazymap.Config{
			Expire:      10 * time.Minute,
			ErrorExpire: 10 * time.Second,
		}),
	}, nil
}

// FetchBatch fetches one page of previews for t. Single videos are never paginated.
func (s *Api) FetchBatch(ctx context.Context, t *Target, pageToken string) (*Batch, error) {
	switch t.Kind {
	case KindVideo:
		return s.fetchVideo(ctx, t.ID)
	case KindPlaylist:
		return s.fetchPlaylist(ctx, KindPlaylist, t.ID, pageToken)
	case KindChannel:
		pID, err := s.uploadsPlaylist(ctx, t)
		if err != nil {
			return nil, err
		}
		return s.fetchPlaylist(ctx, KindChannel, pID, pageToken)
	}
	return nil, ErrInvalidURL
}

// FetchVideo returns metadata of a single video.
func (s *Api) FetchVideo(ctx context.Context, id string) (*VideoPreview, error) {
	vs, err := s.videos(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, &NotFoundError{Message: "Video not found"}
	}
	return vs[0], nil
}

func (s *Api) fetchVideo(ctx context.Context, id string) (*Batch, error) {
	v, err := s.FetchVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Batch{
		Type:   KindVideo,
		Videos: []*VideoPreview{v},
	}, nil
}

func (s *Api) fetchPlaylist(ctx context.Context, k Kind, playlistID string, pageToken string) (*Batch, error) {
	call := s.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(PageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if isNotFound(err) {
		return nil, &NotFoundError{Message: "Playlist not found"}
	}
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	var ids []string
	for _, it := range resp.Items {
		if it.ContentDetails != nil && it.ContentDetails.VideoId != "" {
			ids = append(ids, it.ContentDetails.VideoId)
		}
	}
	videos, err := s.videos(ctx, ids)
	if err != nil {
		return nil, err
	}
	b := &Batch{
		Type:          k,
		Videos:        videos,
		NextPageToken: resp.NextPageToken,
	}
	if resp.PageInfo != nil {
		total := resp.PageInfo.TotalResults
		b.TotalResults = &total
	}
	return b, nil
}

func (s *Api) videos(ctx context.Context, ids []string) ([]*VideoPreview, error) {
	res := []*VideoPreview{}
	if len(ids) == 0 {
		return res, nil
	}
	resp, err := s.svc.Videos.List(videoParts).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	for _, v := range resp.Items {
		res = append(res, toPreview(v))
	}
	return res, nil
}

func toPreview(v *yt.Video) *VideoPreview {
	p := &VideoPreview{
		VideoID: v.Id,
	}
	if v.Snippet != nil {
		p.Title = v.Snippet.Title
		if v.Snippet.Thumbnails != nil && v.Snippet.Thumbnails.Medium != nil {
			p.ThumbnailURL = v.Snippet.Thumbnails.Medium.Url
		}
	}
	if v.ContentDetails != nil {
		p.Duration = v.ContentDetails.Duration
	}
	if v.Status != nil {
		p.MadeForKids = v.Status.MadeForKids
	}
	return p
}

func (s *Api) uploadsPlaylist(ctx context.Context, t *Target) (string, error) {
	cID, err := s.channelID(ctx, t)
	if err != nil {
		return "", err
	}
	pID, err := s.uploads.Get(cID, func() (string, error) {
		resp, err := s.svc.Channels.List([]string{"contentDetails"}).
			Id(cID).
			Context(ctx).
			Do()
		if err != nil {
			return "", &FetchError{Err: err}
		}
		if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil ||
			resp.Items[0].ContentDetails.RelatedPlaylists == nil {
			return "", nil
		}
		return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
	})
	if err != nil {
		return "", err
	}
	if pID == "" {
		return "", &NotFoundError{Message: "Channel not found or has no videos"}
	}
	return pID, nil
}

// channelID turns a handle or legacy username into a canonical channel id.
// An unresolved name is passed through unchanged.
func (s *Api) channelID(ctx context.Context, t *Target) (string, error) {
	if !t.Handle && strings.HasPrefix(t.ID, "UC") {
		return t.ID, nil
	}
	key := t.ID
	if t.Handle {
		key = "@" + t.ID
	}
	return s.channels.Get(key, func() (string, error) {
		call := s.svc.Channels.List([]string{"id"}).Context(ctx)
		if t.Handle {
			call = call.ForHandle(t.ID)
		} else {
			call = call.ForUsername(t.ID)
		}
		resp, err := call.Do()
		if err != nil {
			return "", &FetchError{Err: err}
		}
		if len(resp.Items) == 0 {
			log.WithField("channel", key).Info("channel name not resolved, using it as id")
			return t.ID, nil
		}
		return resp.Items[0].Id, nil
	})
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

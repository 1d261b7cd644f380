package curation

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/safetube/web-ui/models"
	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/youtube"
)

const kidsWarning = `This video is not marked as "Made for Kids". Are you sure you want to add it?`

var (
	ErrAlreadyAdded = errors.New("Video is already in the library")
	ErrInvalidInput = errors.New("invalid input")
)

// InputError is a user facing validation failure, it matches ErrInvalidInput.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

type Resolver interface {
	FetchBatch(ctx context.Context, t *youtube.Target, pageToken string) (*youtube.Batch, error)
	FetchVideo(ctx context.Context, id string) (*youtube.VideoPreview, error)
}

// Warning holds back a single add until the guardian confirms it.
type Warning struct {
	Message  string                `json:"message"`
	Metadata *youtube.VideoPreview `json:"metadata"`
}

type Result struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type Service struct {
	r      Resolver
	store  catalog.Store
	drafts DraftStore
}

func New(r Resolver, store catalog.Store, drafts DraftStore) *Service {
	return &Service{
		r:      r,
		store:  store,
		drafts: drafts,
	}
}

func resolve(rawURL string) (*youtube.Target, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &InputError{Message: "URL is required"}
	}
	return youtube.Resolve(rawURL)
}

// AddSingle whitelists one video. Videos not made for kids are returned as a
// Warning and written only when confirmed is set.
func (s *Service) AddSingle(ctx context.Context, gID uuid.UUID, rawURL string, confirmed bool) (*models.Video, *Warning, error) {
	t, err := resolve(rawURL)
	if err != nil {
		return nil, nil, err
	}
	if t.Kind != youtube.KindVideo {
		return nil, nil, &InputError{Message: "Only single video URLs can be added here"}
	}
	p, err := s.r.FetchVideo(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	if !p.MadeForKids && !confirmed {
		return nil, &Warning{
			Message:  kidsWarning,
			Metadata: p,
		}, nil
	}
	v := toVideo(gID, p)
	added, err := s.store.Add(ctx, v)
	if err != nil {
		return nil, nil, err
	}
	if !added {
		return nil, nil, ErrAlreadyAdded
	}
	log.WithFields(log.Fields{
		"guardian_id": gID,
		"youtube_id":  v.YoutubeID,
	}).Info("video added")
	return v, nil, nil
}

func toVideo(gID uuid.UUID, p *youtube.VideoPreview) *models.Video {
	v := &models.Video{
		GuardianID:  gID,
		YoutubeID:   p.VideoID,
		Title:       p.Title,
		MadeForKids: p.MadeForKids,
	}
	if p.ThumbnailURL != "" {
		thumb := p.ThumbnailURL
		v.ThumbnailURL = &thumb
	}
	if secs, ok := p.DurationSeconds(); ok {
		v.DurationSeconds = &secs
	}
	return v
}

// Preview starts a batch import from a channel or playlist URL, replacing any
// draft in progress.
func (s *Service) Preview(ctx context.Context, gID uuid.UUID, rawURL string) (*Draft, error) {
	t, err := resolve(rawURL)
	if err != nil {
		return nil, err
	}
	if !t.Kind.IsBatch() {
		return nil, &InputError{Message: "Use single add for video URLs"}
	}
	b, err := s.r.FetchBatch(ctx, t, "")
	if err != nil {
		return nil, err
	}
	d := NewDraft(strings.TrimSpace(rawURL), t)
	d.Append(b)
	if err = s.drafts.Put(ctx, gID, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Draft(ctx context.Context, gID uuid.UUID) (*Draft, error) {
	return s.drafts.Get(ctx, gID)
}

// LoadMore appends the next page. A draft that cannot load more is returned
// unchanged.
func (s *Service) LoadMore(ctx context.Context, gID uuid.UUID) (*Draft, error) {
	d, err := s.drafts.Get(ctx, gID)
	if err != nil {
		return nil, err
	}
	if !d.CanLoadMore() {
		return d, nil
	}
	b, err := s.r.FetchBatch(ctx, d.Target(), d.NextPageToken)
	if err != nil {
		return nil, err
	}
	d.Append(b)
	if err = s.drafts.Put(ctx, gID, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) update(ctx context.Context, gID uuid.UUID, fn func(d *Draft)) (*Draft, error) {
	d, err := s.drafts.Get(ctx, gID)
	if err != nil {
		return nil, err
	}
	fn(d)
	if err = s.drafts.Put(ctx, gID, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Toggle(ctx context.Context, gID uuid.UUID, id string) (*Draft, error) {
	return s.update(ctx, gID, func(d *Draft) { d.Toggle(id) })
}

func (s *Service) SelectAll(ctx context.Context, gID uuid.UUID) (*Draft, error) {
	return s.update(ctx, gID, func(d *Draft) { d.SelectAll() })
}

func (s *Service) SelectNone(ctx context.Context, gID uuid.UUID) (*Draft, error) {
	return s.update(ctx, gID, func(d *Draft) { d.SelectNone() })
}

func (s *Service) SetSelection(ctx context.Context, gID uuid.UUID, ids []string) (*Draft, error) {
	return s.update(ctx, gID, func(d *Draft) { d.SetSelection(ids) })
}

// Commit writes every selected preview, already confirmed, and clears the
// draft whatever the outcome. Videos already in the library count as
// succeeded.
func (s *Service) Commit(ctx context.Context, gID uuid.UUID) (*Result, error) {
	d, err := s.drafts.Get(ctx, gID)
	if err != nil {
		return nil, err
	}
	selected := d.SelectedPreviews()
	if len(selected) == 0 {
		return nil, &InputError{Message: "Select at least one video"}
	}
	ctx = context.WithoutCancel(ctx)
	res := fanOut(len(selected), func(i int) error {
		_, err := s.store.Add(ctx, toVideo(gID, selected[i]))
		return err
	})
	if err = s.drafts.Delete(ctx, gID); err != nil {
		log.WithError(err).Warn("failed to clear draft")
	}
	log.WithFields(log.Fields{
		"guardian_id": gID,
		"source":      d.URL,
		"succeeded":   res.Succeeded,
		"failed":      res.Failed,
	}).Info("batch import committed")
	return res, nil
}

func (s *Service) Cancel(ctx context.Context, gID uuid.UUID) error {
	return s.drafts.Delete(ctx, gID)
}

func (s *Service) Delete(ctx context.Context, gID uuid.UUID, id uuid.UUID) error {
	return s.store.Delete(context.WithoutCancel(ctx), gID, id)
}

// BulkDelete issues one delete per record and reports the aggregate outcome.
func (s *Service) BulkDelete(ctx context.Context, gID uuid.UUID, ids []uuid.UUID) *Result {
	ctx = context.WithoutCancel(ctx)
	return fanOut(len(ids), func(i int) error {
		return s.store.Delete(ctx, gID, ids[i])
	})
}

// fanOut starts every item at once and waits for all of them. A failed item
// never cancels its siblings.
func fanOut(n int, fn func(i int) error) *Result {
	var failed atomic.Int64
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := fn(i); err != nil {
				log.WithError(err).Warn("batch item failed")
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	f := int(failed.Load())
	return &Result{
		Succeeded: n - f,
		Failed:    f,
	}
}

package catalog

import (
	"context"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	cs "github.com/webtor-io/common-services"
	"github.com/safetube/web-ui/models"
)

var ErrNotFound = errors.New("video not found")

// Store is the per-guardian whitelist of videos.
type Store interface {
	List(ctx context.Context, gID uuid.UUID) ([]*models.Video, error)
	Get(ctx context.Context, gID uuid.UUID, id uuid.UUID) (*models.Video, error)
	// Add reports false when the guardian already has the same youtube id.
	Add(ctx context.Context, v *models.Video) (bool, error)
	Delete(ctx context.Context, gID uuid.UUID, id uuid.UUID) error
	IncrementWatch(ctx context.Context, id uuid.UUID) error
}

type PG struct {
	pg *cs.PG
}

func New(pg *cs.PG) *PG {
	return &PG{pg: pg}
}

func (s *PG) List(ctx context.Context, gID uuid.UUID) ([]*models.Video, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("no db")
	}
	return models.GetVideosByGuardian(ctx, db, gID)
}

func (s *PG) Get(ctx context.Context, gID uuid.UUID, id uuid.UUID) (*models.Video, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("no db")
	}
	v, err := models.GetVideo(ctx, db, gID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *PG) Add(ctx context.Context, v *models.Video) (bool, error) {
	db := s.pg.Get()
	if db == nil {
		return false, errors.New("no db")
	}
	return models.AddVideo(ctx, db, v)
}

func (s *PG) Delete(ctx context.Context, gID uuid.UUID, id uuid.UUID) error {
	db := s.pg.Get()
	if db == nil {
		return errors.New("no db")
	}
	ok, err := models.RemoveVideo(ctx, db, gID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *PG) IncrementWatch(ctx context.Context, id uuid.UUID) error {
	db := s.pg.Get()
	if db == nil {
		return errors.New("no db")
	}
	ok, err := models.IncrementWatchCount(ctx, db, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PG)(nil)

package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/safetube/web-ui/models"
)

// Memory is an in-process Store, used where no database is wired.
type Memory struct {
	mu     sync.Mutex
	videos map[uuid.UUID]*models.Video
}

func NewMemory() *Memory {
	return &Memory{videos: map[uuid.UUID]*models.Video{}}
}

func (s *Memory) List(_ context.Context, gID uuid.UUID) ([]*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := []*models.Video{}
	for _, v := range s.videos {
		if uuid.Equal(v.GuardianID, gID) {
			c := *v
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (s *Memory) Get(_ context.Context, gID uuid.UUID, id uuid.UUID) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok || !uuid.Equal(v.GuardianID, gID) {
		return nil, ErrNotFound
	}
	c := *v
	return &c, nil
}

func (s *Memory) Add(_ context.Context, v *models.Video) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.videos {
		if uuid.Equal(e.GuardianID, v.GuardianID) && e.YoutubeID == v.YoutubeID {
			return false, nil
		}
	}
	if uuid.Equal(v.VideoID, uuid.Nil) {
		v.VideoID = uuid.NewV4()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	c := *v
	s.videos[v.VideoID] = &c
	return true, nil
}

func (s *Memory) Delete(_ context.Context, gID uuid.UUID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok || !uuid.Equal(v.GuardianID, gID) {
		return ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *Memory) IncrementWatch(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return ErrNotFound
	}
	v.WatchCount++
	return nil
}

var _ Store = (*Memory)(nil)

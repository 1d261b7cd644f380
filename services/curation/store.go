package curation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	uuid "github.com/satori/go.uuid"
)

const (
	draftKeyPrefix = "curation:draft:"
	draftTTL       = time.Hour
)

var ErrNoDraft = errors.New("no batch import in progress")

type DraftStore interface {
	Get(ctx context.Context, gID uuid.UUID) (*Draft, error)
	Put(ctx context.Context, gID uuid.UUID, d *Draft) error
	Delete(ctx context.Context, gID uuid.UUID) error
}

// RedisDraftStore keeps one draft per guardian as JSON with a sliding TTL.
type RedisDraftStore struct {
	cl  redis.UniversalClient
	ttl time.Duration
}

func NewRedisDraftStore(cl redis.UniversalClient) *RedisDraftStore {
	return &RedisDraftStore{
		cl:  cl,
		ttl: draftTTL,
	}
}

func draftKey(gID uuid.UUID) string {
	return fmt.Sprintf("%v%v", draftKeyPrefix, gID)
}

func (s *RedisDraftStore) Get(ctx context.Context, gID uuid.UUID) (*Draft, error) {
	data, err := s.cl.Get(ctx, draftKey(gID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get draft")
	}
	d := &Draft{}
	if err = json.Unmarshal(data, d); err != nil {
		return nil, errors.Wrap(err, "failed to decode draft")
	}
	if d.Selected == nil {
		d.Selected = map[string]bool{}
	}
	return d, nil
}

func (s *RedisDraftStore) Put(ctx context.Context, gID uuid.UUID, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "failed to encode draft")
	}
	err = s.cl.Set(ctx, draftKey(gID), data, s.ttl).Err()
	if err != nil {
		return errors.Wrap(err, "failed to store draft")
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, gID uuid.UUID) error {
	err := s.cl.Del(ctx, draftKey(gID)).Err()
	if err != nil {
		return errors.Wrap(err, "failed to delete draft")
	}
	return nil
}

var _ DraftStore = (*RedisDraftStore)(nil)

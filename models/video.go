package models

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

type SortType int

const (
	SortTypeRecentlyAdded SortType = iota
	SortTypeTitle
)

func (s SortType) String() string {
	switch s {
	case SortTypeRecentlyAdded:
		return "Recently Added"
	case SortTypeTitle:
		return "Title (A-Z)"
	default:
		return "Unknown"
	}
}

// Video is a whitelisted YouTube video owned by a guardian.
type Video struct {
	tableName struct{} `pg:"video"`

	VideoID         uuid.UUID `pg:"video_id,pk"`
	GuardianID      uuid.UUID `pg:"guardian_id,notnull"`
	YoutubeID       string    `pg:"youtube_id,notnull"`
	Title           string    `pg:"title,notnull"`
	ThumbnailURL    *string   `pg:"thumbnail_url"`
	DurationSeconds *int      `pg:"duration_seconds"`
	MadeForKids     bool      `pg:"made_for_kids,notnull,use_zero"`
	WatchCount      int       `pg:"watch_count,notnull,use_zero"`
	CreatedAt       time.Time `pg:"created_at,notnull"`
}

// Duration renders duration_seconds as m:ss, "0:00" when unknown.
func (v *Video) Duration() string {
	if v.DurationSeconds == nil || *v.DurationSeconds <= 0 {
		return "0:00"
	}
	return FormatSeconds(*v.DurationSeconds)
}

func (v *Video) Thumbnail() string {
	if v.ThumbnailURL == nil {
		return ""
	}
	return *v.ThumbnailURL
}

func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func GetVideosByGuardian(ctx context.Context, db *pg.DB, gID uuid.UUID) ([]*Video, error) {
	var videos []*Video
	err := db.Model(&videos).
		Context(ctx).
		Where("guardian_id = ?", gID).
		Order("created_at DESC").
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch videos")
	}
	return videos, nil
}

func GetVideo(ctx context.Context, db *pg.DB, gID uuid.UUID, id uuid.UUID) (*Video, error) {
	v := &Video{}
	err := db.Model(v).
		Context(ctx).
		Where("guardian_id = ? AND video_id = ?", gID, id).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch video")
	}
	return v, nil
}

// AddVideo inserts v unless the guardian already whitelisted the same youtube id.
// Returns false when nothing was inserted.
func AddVideo(ctx context.Context, db *pg.DB, v *Video) (bool, error) {
	if uuid.Equal(v.VideoID, uuid.Nil) {
		v.VideoID = uuid.NewV4()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	res, err := db.Model(v).
		Context(ctx).
		OnConflict("(guardian_id, youtube_id) DO NOTHING").
		Insert()
	if err != nil {
		return false, errors.Wrap(err, "failed to insert video")
	}
	return res.RowsAffected() > 0, nil
}

// RemoveVideo returns false when no row matched.
func RemoveVideo(ctx context.Context, db *pg.DB, gID uuid.UUID, id uuid.UUID) (bool, error) {
	res, err := db.Model((*Video)(nil)).
		Context(ctx).
		Where("guardian_id = ? AND video_id = ?", gID, id).
		Delete()
	if err != nil {
		return false, errors.Wrap(err, "failed to remove video")
	}
	return res.RowsAffected() > 0, nil
}

func IncrementWatchCount(ctx context.Context, db *pg.DB, id uuid.UUID) (bool, error) {
	res, err := db.Model((*Video)(nil)).
		Context(ctx).
		Set("watch_count = watch_count + 1").
		Where("video_id = ?", id).
		Update()
	if err != nil {
		return false, errors.Wrap(err, "failed to increment watch count")
	}
	return res.RowsAffected() > 0, nil
}

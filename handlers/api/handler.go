package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/safetube/web-ui/models"
	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/curation"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/youtube"
)

type Handler struct {
	store catalog.Store
	cur   *curation.Service
	res   curation.Resolver
}

func RegisterHandler(r *gin.Engine, domain string, store catalog.Store, cur *curation.Service, res curation.Resolver) {
	h := &Handler{
		store: store,
		cur:   cur,
		res:   res,
	}
	gr := r.Group("/api")
	gr.Use(cors.New(cors.Config{
		AllowOrigins:     []string{domain},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"content-type"},
		AllowCredentials: true,
		MaxAge:           1 * time.Minute,
	}))
	gr.GET("/videos", h.listVideos)
	gr.POST("/videos/:id/watch", h.watch)
	gra := gr.Group("")
	gra.Use(hasAuth)
	gra.POST("/videos", h.addVideo)
	gra.DELETE("/videos/:id", h.deleteVideo)
	gra.POST("/youtube-batch", h.batch)
}

func hasAuth(c *gin.Context) {
	if !auth.GetGuardianFromContext(c).HasAuth() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

// viewer is the guardian whose catalog the caller may read: the signed in
// guardian, else the guardian the device is linked to.
func viewer(c *gin.Context) uuid.UUID {
	if g := auth.GetGuardianFromContext(c); g.HasAuth() {
		return g.ID
	}
	if d := device.GetDeviceFromContext(c); d.Linked() {
		return d.GuardianID
	}
	return uuid.Nil
}

// statusFor maps an error to its response code. Provider failures and
// anything unknown are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, youtube.ErrInvalidURL), errors.Is(err, curation.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, youtube.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, curation.ErrAlreadyAdded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	code := statusFor(err)
	msg := err.Error()
	var fe *youtube.FetchError
	if code == http.StatusInternalServerError && !errors.As(err, &fe) {
		log.WithError(err).WithField("path", c.Request.URL.Path).Error("api request failed")
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

type Video struct {
	ID              string    `json:"id"`
	ParentID        string    `json:"parent_id"`
	YoutubeID       string    `json:"youtube_id"`
	Title           string    `json:"title"`
	ThumbnailURL    *string   `json:"thumbnail_url"`
	DurationSeconds *int      `json:"duration_seconds"`
	MadeForKids     bool      `json:"made_for_kids"`
	WatchCount      int       `json:"watch_count"`
	CreatedAt       time.Time `json:"created_at"`
}

func toVideo(v *models.Video) *Video {
	return &Video{
		ID:              v.VideoID.String(),
		ParentID:        v.GuardianID.String(),
		YoutubeID:       v.YoutubeID,
		Title:           v.Title,
		ThumbnailURL:    v.ThumbnailURL,
		DurationSeconds: v.DurationSeconds,
		MadeForKids:     v.MadeForKids,
		WatchCount:      v.WatchCount,
		CreatedAt:       v.CreatedAt,
	}
}

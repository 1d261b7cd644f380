package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/curation"
)

func (s *Handler) listVideos(c *gin.Context) {
	pID := c.Query("parent_id")
	if pID == "" {
		abortWithError(c, &curation.InputError{Message: "parent_id is required"})
		return
	}
	gID, err := uuid.FromString(pID)
	if err != nil {
		abortWithError(c, &curation.InputError{Message: "Invalid parent_id"})
		return
	}
	if v := viewer(c); uuid.Equal(v, uuid.Nil) || !uuid.Equal(v, gID) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	vs, err := s.store.List(c.Request.Context(), gID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	res := make([]*Video, 0, len(vs))
	for _, v := range vs {
		res = append(res, toVideo(v))
	}
	c.JSON(http.StatusOK, gin.H{"videos": res})
}

type AddVideoRequest struct {
	URL       string `json:"url"`
	Confirmed bool   `json:"confirmed"`
}

func (s *Handler) addVideo(c *gin.Context) {
	var req AddVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, &curation.InputError{Message: "Invalid request body"})
		return
	}
	g := auth.GetGuardianFromContext(c)
	v, w, err := s.cur.AddSingle(c.Request.Context(), g.ID, req.URL, req.Confirmed)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if w != nil {
		c.JSON(http.StatusOK, gin.H{
			"warning":  true,
			"message":  w.Message,
			"metadata": w.Metadata,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"video": toVideo(v)})
}

func (s *Handler) deleteVideo(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		abortWithError(c, catalog.ErrNotFound)
		return
	}
	g := auth.GetGuardianFromContext(c)
	if err = s.cur.Delete(c.Request.Context(), g.ID, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// watch records a viewing. The write is not tied to the request so a
// client leaving the page does not cancel it.
func (s *Handler) watch(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		abortWithError(c, catalog.ErrNotFound)
		return
	}
	gID := viewer(c)
	if uuid.Equal(gID, uuid.Nil) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	if _, err = s.store.Get(ctx, gID, id); err != nil {
		abortWithError(c, err)
		return
	}
	if err = s.store.IncrementWatch(ctx, id); err != nil {
		log.WithError(err).WithField("video", id).Warn("failed to record watch")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

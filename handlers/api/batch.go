package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/safetube/web-ui/services/curation"
	"github.com/safetube/web-ui/services/youtube"
)

type BatchRequest struct {
	URL       string `json:"url"`
	PageToken string `json:"pageToken"`
}

// batch resolves a URL into one page of previews without touching the
// catalog.
func (s *Handler) batch(c *gin.Context) {
	var req BatchRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.URL) == "" {
		abortWithError(c, &curation.InputError{Message: "URL is required"})
		return
	}
	t, err := youtube.Resolve(req.URL)
	if err != nil {
		abortWithError(c, err)
		return
	}
	b, err := s.res.FetchBatch(c.Request.Context(), t, req.PageToken)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/safetube/web-ui/models"
	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/curation"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/template"
	"github.com/safetube/web-ui/services/web"
)

type IndexData struct {
	Videos []*models.Video
	Draft  *curation.Draft
}

type Handler struct {
	tb     template.Builder[*web.Context]
	store  catalog.Store
	cur    *curation.Service
	tokens *device.Tokens
	domain string
}

func RegisterHandler(r *gin.Engine, tm *template.Manager[*web.Context], domain string, store catalog.Store, cur *curation.Service, tokens *device.Tokens) {
	h := &Handler{
		tb:     tm.MustRegisterViews("admin/*").WithLayout("main"),
		store:  store,
		cur:    cur,
		tokens: tokens,
		domain: domain,
	}
	gr := r.Group("/admin")
	gr.Use(auth.HasAuth)
	gr.GET("", h.index)
	gr.POST("/videos", h.add)
	gr.GET("/videos/:id/delete", h.confirmDelete)
	gr.POST("/videos/:id/delete", h.delete)
	gr.POST("/videos/bulk-delete", h.bulkDelete)
	gr.GET("/batch", h.batch)
	gr.POST("/batch", h.preview)
	gr.POST("/batch/toggle", h.toggle)
	gr.POST("/batch/select-all", h.selectAll)
	gr.POST("/batch/select-none", h.selectNone)
	gr.POST("/batch/more", h.loadMore)
	gr.POST("/batch/commit", h.commit)
	gr.POST("/batch/cancel", h.cancel)
	gr.POST("/link", h.link)
}

func (s *Handler) index(c *gin.Context) {
	g := auth.GetGuardianFromContext(c)
	ctx := c.Request.Context()
	vs, err := s.store.List(ctx, g.ID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	d, err := s.cur.Draft(ctx, g.ID)
	if err != nil && !errors.Is(err, curation.ErrNoDraft) {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	s.tb.Build("admin/index").HTML(http.StatusOK, web.NewContext(c).WithData(&IndexData{
		Videos: vs,
		Draft:  d,
	}))
}

// redirectWithError sends user facing failures back as a flash and
// aborts on anything else.
func redirectWithError(c *gin.Context, err error) {
	if errors.Is(err, curation.ErrInvalidInput) ||
		errors.Is(err, curation.ErrAlreadyAdded) ||
		errors.Is(err, curation.ErrNoDraft) ||
		errors.Is(err, catalog.ErrNotFound) ||
		isProviderError(err) {
		web.RedirectWithError(c, err)
		return
	}
	_ = c.AbortWithError(http.StatusInternalServerError, err)
}

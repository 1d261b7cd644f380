package watch

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/safetube/web-ui/models"
	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/gate"
	"github.com/safetube/web-ui/services/template"
	"github.com/safetube/web-ui/services/web"
)

type Data struct {
	Video *models.Video
}

type Handler struct {
	tb        template.Builder[*web.Context]
	store     catalog.Store
	afterFunc gate.AfterFunc
}

func RegisterHandler(r *gin.Engine, tm *template.Manager[*web.Context], store catalog.Store) {
	newHandler(tm, store).register(r)
}

func newHandler(tm *template.Manager[*web.Context], store catalog.Store) *Handler {
	return &Handler{
		tb:    tm.MustRegisterViews("watch/*").WithLayout("main"),
		store: store,
	}
}

func (s *Handler) register(r *gin.Engine) {
	gr := r.Group("/watch")
	gr.Use(device.RequireLinked)
	gr.GET("/:id", s.index)
	gr.GET("/:id/gate", s.gate)
}

// video loads a catalog video of the linked guardian.
func (s *Handler) video(c *gin.Context, id string) (*models.Video, error) {
	vID, err := uuid.FromString(id)
	if err != nil {
		return nil, catalog.ErrNotFound
	}
	d := device.GetDeviceFromContext(c)
	return s.store.Get(c.Request.Context(), d.GuardianID, vID)
}

func (s *Handler) index(c *gin.Context) {
	v, err := s.video(c, c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	s.tb.Build("watch/index").HTML(http.StatusOK, web.NewContext(c).WithData(&Data{
		Video: v,
	}))
}

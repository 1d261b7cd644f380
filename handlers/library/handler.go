package library

import (
	"github.com/gin-gonic/gin"

	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/template"
	"github.com/safetube/web-ui/services/web"
)

type Handler struct {
	tb    template.Builder[*web.Context]
	store catalog.Store
}

func RegisterHandler(r *gin.Engine, tm *template.Manager[*web.Context], store catalog.Store) {
	h := &Handler{
		tb:    tm.MustRegisterViews("library/*").WithLayout("main"),
		store: store,
	}
	r.GET("/", device.RequireLinked, h.index)
}

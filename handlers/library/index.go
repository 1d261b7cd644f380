package library

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safetube/web-ui/models"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/web"
)

type IndexArgs struct {
	Sort models.SortType
}

type IndexData struct {
	Args   *IndexArgs
	Sort   Sort
	Videos []*models.Video
}

func (s *Handler) bindIndexArgs(c *gin.Context) *IndexArgs {
	return &IndexArgs{
		Sort: parseSort(c.Query("sort")),
	}
}

func (s *Handler) index(c *gin.Context) {
	d := device.GetDeviceFromContext(c)
	args := s.bindIndexArgs(c)
	vs, err := s.store.List(c.Request.Context(), d.GuardianID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	sortVideos(vs, args.Sort)
	s.tb.Build("library/index").HTML(http.StatusOK, web.NewContext(c).WithData(&IndexData{
		Args:   args,
		Sort:   NewSort(args.Sort, models.SortTypeRecentlyAdded, models.SortTypeTitle),
		Videos: vs,
	}))
}

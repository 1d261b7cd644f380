package watch

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/safetube/web-ui/models"
	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/gate"
)

var handsetUA = regexp.MustCompile(`iPad|iPhone|iPod`)

// ClientMessage is anything the browser sends over the gate connection.
type ClientMessage struct {
	Type   string   `json:"type"`
	Code   *int     `json:"code,omitempty"`
	Time   *float64 `json:"time,omitempty"`
	Action string   `json:"action,omitempty"`
}

// watchCounter counts views against the catalog.
type watchCounter struct {
	store catalog.Store
}

func (s *watchCounter) IncrementWatch(ctx context.Context, id string) error {
	vID, err := uuid.FromString(id)
	if err != nil {
		return errors.Wrapf(err, "bad video id %v", id)
	}
	return s.store.IncrementWatch(ctx, vID)
}

func toGateVideo(v *models.Video) *gate.Video {
	return &gate.Video{
		ID:           v.VideoID.String(),
		YoutubeID:    v.YoutubeID,
		Title:        v.Title,
		ThumbnailURL: v.Thumbnail(),
	}
}

type conn struct {
	player  *wsPlayer
	surface *gate.Surface
	video   *models.Video
	log     *log.Entry
}

// gate serves the websocket channel of the watch page. Each connection owns
// one surface playing one video; picking another video loads a new page and
// with it a new connection.
func (s *Handler) gate(c *gin.Context) {
	v, err := s.video(c, c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) {
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	ws, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("failed to accept gate connection")
		return
	}
	handset := handsetUA.MatchString(c.Request.UserAgent())
	p := newWSPlayer()
	cn := &conn{
		player: p,
		video:  v,
		log: log.WithFields(log.Fields{
			"guardian_id": device.GetDeviceFromContext(c).GuardianID,
			"video_id":    v.VideoID,
			"handset":     handset,
		}),
	}
	opts := []gate.Option{
		gate.WithHandset(handset),
		gate.WithListener(cn.onChange),
	}
	if s.afterFunc != nil {
		opts = append(opts, gate.WithAfterFunc(s.afterFunc))
	}
	cn.surface = gate.NewSurface(p, &watchCounter{store: s.store}, opts...)
	cn.serve(c.Request.Context(), ws)
}

func (s *conn) serve(ctx context.Context, ws *websocket.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for b := range s.player.out {
			if err := ws.Write(ctx, websocket.MessageText, b); err != nil {
				s.log.WithError(err).Debug("gate write failed")
				cancel()
				return
			}
		}
	}()

	sess := s.surface.Open(toGateVideo(s.video))
	s.sendView(sess.View())
	s.log.Info("gate connected")
	for {
		var m ClientMessage
		if err := wsjson.Read(ctx, ws, &m); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				s.log.WithError(err).Warn("gate read failed")
			}
			break
		}
		s.handle(&m)
	}

	s.surface.Close()
	s.player.close()
	<-done
	_ = ws.Close(websocket.StatusNormalClosure, "")
	s.log.Info("gate disconnected")
}

func (s *conn) handle(m *ClientMessage) {
	switch m.Type {
	case "ready":
		sess := s.surface.Session()
		if sess == nil {
			return
		}
		sess.Ready()
		s.sendView(sess.View())
	case "player":
		if m.Code == nil {
			return
		}
		ev, ok := gate.PlayerEvent(*m.Code)
		if !ok {
			return
		}
		s.player.report(ev, m.Time)
		s.surface.Handle(ev)
	case "fullscreen-exit":
		s.surface.Handle(gate.EventFullscreenExit)
	case "action":
		ev, ok := gate.ParseAction(m.Action)
		if !ok {
			s.sendError("Unknown action")
			return
		}
		s.surface.Handle(ev)
	default:
		s.sendError("Unknown message")
	}
}

// onChange runs under the session lock.
func (s *conn) onChange(v gate.View) {
	s.sendView(v)
	if v.Closed {
		s.send(&ErrorMessage{Type: "close"})
	}
}

func (s *conn) sendView(v gate.View) {
	s.send(&ViewMessage{
		Type:    "view",
		VideoID: s.video.VideoID.String(),
		View:    v,
	})
}

func (s *conn) sendError(msg string) {
	s.send(&ErrorMessage{Type: "error", Message: msg})
}

func (s *conn) send(m any) {
	if err := s.player.send(m); err != nil && !errors.Is(err, errClosed) {
		s.log.WithError(err).Warn("failed to send gate message")
	}
}

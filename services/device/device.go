package device

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

const (
	sessionKey = "device-guardian-id"
	contextKey = "device"
	LinkPath   = "/link-device"
)

// Device is the viewing device of the request. GuardianID is nil until the
// device is linked.
type Device struct {
	GuardianID uuid.UUID
}

func (s *Device) Linked() bool {
	return s != nil && !uuid.Equal(s.GuardianID, uuid.Nil)
}

func fromSession(c *gin.Context) *Device {
	d := &Device{}
	v, ok := sessions.Default(c).Get(sessionKey).(string)
	if !ok {
		return d
	}
	gID, err := uuid.FromString(v)
	if err != nil {
		return d
	}
	d.GuardianID = gID
	return d
}

// Middleware resolves the device once per request.
func Middleware(c *gin.Context) {
	c.Set(contextKey, fromSession(c))
	c.Next()
}

func GetDeviceFromContext(c *gin.Context) *Device {
	if d, ok := c.Get(contextKey); ok {
		return d.(*Device)
	}
	return fromSession(c)
}

// RequireLinked sends unlinked devices to the linking page.
func RequireLinked(c *gin.Context) {
	if !GetDeviceFromContext(c).Linked() {
		c.Redirect(http.StatusFound, LinkPath)
		c.Abort()
		return
	}
	c.Next()
}

func Link(c *gin.Context, gID uuid.UUID) error {
	s := sessions.Default(c)
	s.Set(sessionKey, gID.String())
	if err := s.Save(); err != nil {
		return errors.Wrap(err, "failed to link device")
	}
	c.Set(contextKey, &Device{GuardianID: gID})
	return nil
}

func Unlink(c *gin.Context) error {
	s := sessions.Default(c)
	s.Delete(sessionKey)
	if err := s.Save(); err != nil {
		return errors.Wrap(err, "failed to unlink device")
	}
	c.Set(contextKey, &Device{})
	return nil
}

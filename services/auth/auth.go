package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	cs "github.com/webtor-io/common-services"
	"golang.org/x/crypto/bcrypt"

	"github.com/safetube/web-ui/models"
)

const (
	guardianIDKey    = "guardian-id"
	guardianEmailKey = "guardian-email"
	contextKey       = "guardian"
	MinPasswordLen   = 8
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrWeakPassword       = errors.Errorf("Password must be at least %d characters", MinPasswordLen)
)

type Store interface {
	GetGuardianByEmail(ctx context.Context, email string) (*models.Guardian, error)
	CreateGuardian(ctx context.Context, email string, passwordHash string) (*models.Guardian, error)
}

type PGStore struct {
	pg *cs.PG
}

func NewPGStore(pg *cs.PG) *PGStore {
	return &PGStore{pg: pg}
}

func (s *PGStore) GetGuardianByEmail(ctx context.Context, email string) (*models.Guardian, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("no db")
	}
	return models.GetGuardianByEmail(ctx, db, email)
}

func (s *PGStore) CreateGuardian(ctx context.Context, email string, passwordHash string) (*models.Guardian, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("no db")
	}
	return models.CreateGuardian(ctx, db, email, passwordHash)
}

// Guardian is the signed in guardian of the request, empty when anonymous.
type Guardian struct {
	ID    uuid.UUID
	Email string
}

func (s *Guardian) HasAuth() bool {
	return s != nil && !uuid.Equal(s.ID, uuid.Nil)
}

type Auth struct {
	store Store
}

func New(store Store) *Auth {
	return &Auth{store: store}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a guardian account.
func (s *Auth) Register(ctx context.Context, email string, password string) (*models.Guardian, error) {
	if models.NormalizeEmail(email) == "" {
		return nil, errors.New("email is required")
	}
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.store.CreateGuardian(ctx, email, hash)
}

// Authenticate checks the credentials of a guardian.
func (s *Auth) Authenticate(ctx context.Context, email string, password string) (*models.Guardian, error) {
	g, err := s.store.GetGuardianByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if g == nil || !CheckPassword(g.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return g, nil
}

func SignIn(c *gin.Context, g *models.Guardian) error {
	s := sessions.Default(c)
	s.Set(guardianIDKey, g.GuardianID.String())
	s.Set(guardianEmailKey, g.Email)
	if err := s.Save(); err != nil {
		return errors.Wrap(err, "failed to save session")
	}
	c.Set(contextKey, &Guardian{ID: g.GuardianID, Email: g.Email})
	return nil
}

func SignOut(c *gin.Context) error {
	s := sessions.Default(c)
	s.Delete(guardianIDKey)
	s.Delete(guardianEmailKey)
	if err := s.Save(); err != nil {
		return errors.Wrap(err, "failed to save session")
	}
	c.Set(contextKey, &Guardian{})
	return nil
}

func fromSession(c *gin.Context) *Guardian {
	g := &Guardian{}
	s := sessions.Default(c)
	id, ok := s.Get(guardianIDKey).(string)
	if !ok {
		return g
	}
	gID, err := uuid.FromString(id)
	if err != nil {
		return g
	}
	g.ID = gID
	g.Email, _ = s.Get(guardianEmailKey).(string)
	return g
}

func Middleware(c *gin.Context) {
	c.Set(contextKey, fromSession(c))
	c.Next()
}

func GetGuardianFromContext(c *gin.Context) *Guardian {
	if g, ok := c.Get(contextKey); ok {
		return g.(*Guardian)
	}
	return fromSession(c)
}

// HasAuth sends anonymous requests to the login page.
func HasAuth(c *gin.Context) {
	if !GetGuardianFromContext(c).HasAuth() {
		c.Redirect(http.StatusFound, "/login?return-url="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
		return
	}
	c.Next()
}

package device

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/urfave/cli"

	"github.com/safetube/web-ui/services/common"
)

const linkTokenTTLFlag = "link-token-ttl"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   linkTokenTTLFlag,
			Usage:  "lifetime of device link tokens",
			Value:  15 * time.Minute,
			EnvVar: "LINK_TOKEN_TTL",
		},
	)
}

var ErrInvalidToken = errors.New("invalid or expired link token")

// Tokens issues and verifies signed device link tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(c *cli.Context) *Tokens {
	return NewTokensWithSecret(c.String(common.SessionSecretFlag), c.Duration(linkTokenTTLFlag))
}

func NewTokensWithSecret(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Tokens) Issue(gID uuid.UUID) (string, time.Time, error) {
	exp := s.now().Add(s.ttl)
	clms := jwt.MapClaims{
		"gid": gID.String(),
		"exp": exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, clms)
	str, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign link token")
	}
	return str, exp, nil
}

func (s *Tokens) Verify(data string) (uuid.UUID, error) {
	token, err := jwt.Parse(data, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	clms, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	if _, ok := clms["exp"]; !ok {
		return uuid.Nil, ErrInvalidToken
	}
	v, ok := clms["gid"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	gID, err := uuid.FromString(v)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return gID, nil
}

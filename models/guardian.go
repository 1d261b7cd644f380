package models

import (
	"context"
	"strings"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

type Guardian struct {
	tableName  struct{}  `pg:"guardian"`
	GuardianID uuid.UUID `pg:"guardian_id,pk"`
	Email      string
	Password   string
	CreatedAt  time.Time
}

func GetGuardianByID(ctx context.Context, db *pg.DB, id uuid.UUID) (*Guardian, error) {
	g := &Guardian{}
	err := db.Model(g).
		Context(ctx).
		Where("guardian_id = ?", id).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch guardian")
	}
	return g, nil
}

func GetGuardianByEmail(ctx context.Context, db *pg.DB, email string) (*Guardian, error) {
	g := &Guardian{}
	err := db.Model(g).
		Context(ctx).
		Where("email = ?", NormalizeEmail(email)).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch guardian")
	}
	return g, nil
}

// CreateGuardian stores a guardian with an already hashed password.
func CreateGuardian(ctx context.Context, db *pg.DB, email string, passwordHash string) (*Guardian, error) {
	g := &Guardian{
		GuardianID: uuid.NewV4(),
		Email:      NormalizeEmail(email),
		Password:   passwordHash,
		CreatedAt:  time.Now(),
	}
	_, err := db.Model(g).
		Context(ctx).
		Insert()
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert guardian")
	}
	return g, nil
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

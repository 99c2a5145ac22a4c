package repository

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/launchbay/launchbay/auth"
	"github.com/uptrace/bun"
)

// Users manages user records. FindByEmail satisfies the pipeline's
// read-only store; the remaining operations serve the wider dashboard.
type Users interface {
	repository.Repository[*auth.User]
	auth.UserStore

	Register(ctx context.Context, user *auth.User) (*auth.User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error)
	TrackSuccessfulLogin(ctx context.Context, user *auth.User) error
}

type users struct {
	repository.Repository[*auth.User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository creates a Bun-backed users repository.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*auth.User](db, repository.ModelHandlers[*auth.User]{
		NewRecord: func() *auth.User { return &auth.User{} },
		GetID: func(u *auth.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *auth.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// FindByEmail matches users case-insensitively on email.
func (r *users) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	record := &auth.User{}
	err := r.db.NewSelect().
		Model(record).
		Where("lower(?TableAlias.email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *users) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	return r.RegisterTx(ctx, r.db, user)
}

func (r *users) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	prepareUserDefaults(user)
	return r.Repository.CreateTx(ctx, tx, user)
}

func (r *users) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	loggedInAt := time.Now()
	_, err := r.db.NewUpdate().
		Model((*auth.User)(nil)).
		Set("last_login_at = ?", loggedInAt).
		Where("id = ?", user.ID).
		Where("deleted_at IS NULL").
		Exec(ctx)

	return err
}

func prepareUserDefaults(record *auth.User) {
	if record == nil {
		return
	}

	record.Name = auth.TruncateName(strings.TrimSpace(record.Name))

	if record.ID == uuid.Nil {
		// Deterministic id from email keeps re-registrations stable; fall
		// back to a random id when the email is unusable.
		if id, err := hashid.NewUUID(record.Email); err == nil && record.Email != "" {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}

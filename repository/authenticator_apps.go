package repository

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/launchbay/launchbay/auth"
	"github.com/uptrace/bun"
)

// AuthenticatorApps manages TOTP authenticator registrations. CountByUser
// satisfies the sign-in pipeline's step-up check.
type AuthenticatorApps interface {
	repository.Repository[*auth.AuthenticatorApp]
	auth.AuthenticatorAppStore

	ListByUser(ctx context.Context, userID string) ([]*auth.AuthenticatorApp, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type authenticatorApps struct {
	repository.Repository[*auth.AuthenticatorApp]
	db *bun.DB
}

var _ AuthenticatorApps = (*authenticatorApps)(nil)

// NewAuthenticatorAppsRepository creates a Bun-backed authenticator repository.
func NewAuthenticatorAppsRepository(db *bun.DB) AuthenticatorApps {
	repo := repository.NewRepository[*auth.AuthenticatorApp](db, repository.ModelHandlers[*auth.AuthenticatorApp]{
		NewRecord: func() *auth.AuthenticatorApp { return &auth.AuthenticatorApp{} },
		GetID: func(a *auth.AuthenticatorApp) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *auth.AuthenticatorApp, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &authenticatorApps{
		Repository: repo,
		db:         db,
	}
}

func (r *authenticatorApps) CountByUser(ctx context.Context, userID string) (int, error) {
	return r.db.NewSelect().
		Model((*auth.AuthenticatorApp)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Count(ctx)
}

func (r *authenticatorApps) ListByUser(ctx context.Context, userID string) ([]*auth.AuthenticatorApp, error) {
	var records []*auth.AuthenticatorApp
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *authenticatorApps) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.NewDelete().
		Model((*auth.AuthenticatorApp)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

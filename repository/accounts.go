package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/launchbay/launchbay/auth"
	"github.com/uptrace/bun"
)

// Accounts manages linked provider accounts.
type Accounts interface {
	auth.AccountStore

	FindByUser(ctx context.Context, userID string) ([]*auth.Account, error)
	Upsert(ctx context.Context, account *auth.Account) error
	DeleteByUserAndProvider(ctx context.Context, userID, provider string) error
}

type accounts struct {
	db *bun.DB
}

// NewAccountsRepository creates a Bun-backed accounts repository.
func NewAccountsRepository(db *bun.DB) Accounts {
	return &accounts{db: db}
}

// FindByProvider looks up an account by exact (provider, providerAccountID)
// match. Provider identities are unique per pair.
func (r *accounts) FindByProvider(ctx context.Context, provider, providerAccountID string) (*auth.Account, error) {
	account := &auth.Account{}
	err := r.db.NewSelect().
		Model(account).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accounts) FindByUser(ctx context.Context, userID string) ([]*auth.Account, error) {
	var records []*auth.Account
	err := r.db.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *accounts) Upsert(ctx context.Context, account *auth.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	now := time.Now()
	account.UpdatedAt = &now

	_, err := r.db.NewInsert().
		Model(account).
		On("CONFLICT (provider, provider_account_id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("type = EXCLUDED.type").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("expires_at = EXCLUDED.expires_at").
		Set("scope = EXCLUDED.scope").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	return err
}

func (r *accounts) DeleteByUserAndProvider(ctx context.Context, userID, provider string) error {
	_, err := r.db.NewDelete().
		Model((*auth.Account)(nil)).
		Where("user_id = ? AND provider = ?", userID, provider).
		Exec(ctx)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Manager bundles the persistence-layer repositories behind one handle.
type Manager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() Users
	Accounts() Accounts
	AuthenticatorApps() AuthenticatorApps
}

type mngr struct {
	db                *bun.DB
	users             Users
	accounts          Accounts
	authenticatorApps AuthenticatorApps
}

// NewManager wires the Bun-backed repositories against the given database.
func NewManager(db *bun.DB) Manager {
	return &mngr{
		db:                db,
		users:             NewUsersRepository(db),
		accounts:          NewAccountsRepository(db),
		authenticatorApps: NewAuthenticatorAppsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager needs a database handle")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	if m.authenticatorApps == nil {
		return errors.New("repository authenticatorApps should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Accounts() Accounts {
	return m.accounts
}

func (m mngr) AuthenticatorApps() AuthenticatorApps {
	return m.authenticatorApps
}

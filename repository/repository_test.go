package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/launchbay/launchbay/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL UNIQUE,
    email_verified TIMESTAMP NULL,
    image TEXT,
    metadata TEXT,
    last_login_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`
	sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    type TEXT NOT NULL,
    provider TEXT NOT NULL,
    provider_account_id TEXT NOT NULL,
    access_token TEXT,
    refresh_token TEXT,
    expires_at TIMESTAMP NULL,
    scope TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
    CONSTRAINT uq_accounts_provider_id UNIQUE (provider, provider_account_id)
);`
	sqliteCreateAuthenticatorApps = `CREATE TABLE authenticator_apps (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    account_name TEXT NOT NULL,
    issuer TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);`
)

func setupManager(t *testing.T) (Manager, func()) {
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	for _, ddl := range []string{sqliteCreateUsers, sqliteCreateAccounts, sqliteCreateAuthenticatorApps} {
		_, err = bunDB.Exec(ddl)
		require.NoError(t, err)
	}

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return NewManager(bunDB), cleanup
}

func seedUser(t *testing.T, m Manager, email string) *auth.User {
	user, err := m.Users().Register(context.Background(), &auth.User{
		Name:  "Seed User",
		Email: email,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)
	return user
}

func TestManagerValidate(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	require.NoError(t, m.Validate())

	empty := &mngr{}
	assert.Error(t, empty.Validate())
}

func TestUsersRegisterAssignsDeterministicID(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	user := seedUser(t, m, "pepe@example.com")

	found, err := m.Users().FindByEmail(context.Background(), "pepe@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUsersFindByEmailIsCaseInsensitive(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	seedUser(t, m, "mixed.case@example.com")

	found, err := m.Users().FindByEmail(context.Background(), "Mixed.Case@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "mixed.case@example.com", found.Email)

	_, err = m.Users().FindByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUsersRegisterTruncatesLongNames(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	long := ""
	for i := 0; i < 10; i++ {
		long += "abcdefghij"
	}

	user, err := m.Users().Register(context.Background(), &auth.User{
		Name:  long,
		Email: "long.name@example.com",
	})
	require.NoError(t, err)
	assert.Len(t, []rune(user.Name), auth.MaxNameLength)
}

func TestUsersTrackSuccessfulLogin(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	user := seedUser(t, m, "login@example.com")
	require.Nil(t, user.LastLoginAt)

	err := m.Users().TrackSuccessfulLogin(context.Background(), user)
	require.NoError(t, err)

	found, err := m.Users().FindByEmail(context.Background(), "login@example.com")
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *found.LastLoginAt, 5*time.Second)
}

func TestAccountsUpsertAndFindByProvider(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, m, "octo@example.com")
	expiresAt := time.Now().Add(2 * time.Hour).UTC()

	account := &auth.Account{
		UserID:            user.ID,
		Type:              auth.AccountTypeOAuth,
		Provider:          string(auth.OAuthGoogle),
		ProviderAccountID: "123",
		AccessToken:       "token",
		RefreshToken:      "refresh",
		ExpiresAt:         &expiresAt,
		Scope:             "openid email profile",
	}

	err := m.Accounts().Upsert(ctx, account)
	require.NoError(t, err)

	found, err := m.Accounts().FindByProvider(ctx, string(auth.OAuthGoogle), "123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.UserID)
	assert.Equal(t, "token", found.AccessToken)
	require.NotNil(t, found.ExpiresAt)
	assert.WithinDuration(t, expiresAt, *found.ExpiresAt, time.Second)

	account.AccessToken = "rotated"
	err = m.Accounts().Upsert(ctx, account)
	require.NoError(t, err)

	updated, err := m.Accounts().FindByProvider(ctx, string(auth.OAuthGoogle), "123")
	require.NoError(t, err)
	assert.Equal(t, "rotated", updated.AccessToken)

	all, err := m.Accounts().FindByUser(ctx, user.ID.String())
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestAccountsFindByProviderRequiresExactPair(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, m, "pair@example.com")

	err := m.Accounts().Upsert(ctx, &auth.Account{
		UserID:            user.ID,
		Type:              auth.AccountTypeOAuth,
		Provider:          string(auth.OAuthGoogle),
		ProviderAccountID: "g-1",
	})
	require.NoError(t, err)

	_, err = m.Accounts().FindByProvider(ctx, string(auth.OAuthMicrosoftEntraID), "g-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = m.Accounts().FindByProvider(ctx, string(auth.OAuthGoogle), "g-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAccountsDeleteByUserAndProvider(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, m, "delete@example.com")

	err := m.Accounts().Upsert(ctx, &auth.Account{
		UserID:            user.ID,
		Type:              auth.AccountTypeOAuth,
		Provider:          string(auth.OAuthMicrosoftEntraID),
		ProviderAccountID: "ms-9",
	})
	require.NoError(t, err)

	err = m.Accounts().DeleteByUserAndProvider(ctx, user.ID.String(), string(auth.OAuthMicrosoftEntraID))
	require.NoError(t, err)

	_, err = m.Accounts().FindByProvider(ctx, string(auth.OAuthMicrosoftEntraID), "ms-9")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAuthenticatorAppsCountByUser(t *testing.T) {
	m, cleanup := setupManager(t)
	defer cleanup()

	ctx := context.Background()
	user := seedUser(t, m, "mfa@example.com")
	other := seedUser(t, m, "no.mfa@example.com")

	count, err := m.AuthenticatorApps().CountByUser(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = m.AuthenticatorApps().Create(ctx, &auth.AuthenticatorApp{
		UserID:      user.ID,
		AccountName: "mfa@example.com",
		Issuer:      "launchbay",
	})
	require.NoError(t, err)

	count, err = m.AuthenticatorApps().CountByUser(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = m.AuthenticatorApps().CountByUser(ctx, other.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	apps, err := m.AuthenticatorApps().ListByUser(ctx, user.ID.String())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "launchbay", apps[0].Issuer)

	err = m.AuthenticatorApps().DeleteByUser(ctx, user.ID.String())
	require.NoError(t, err)

	count, err = m.AuthenticatorApps().CountByUser(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

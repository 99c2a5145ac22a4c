package main

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/launchbay/launchbay/auth"
	"github.com/launchbay/launchbay/config"
	"github.com/launchbay/launchbay/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	testCreateUsers = `CREATE TABLE users (
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
	testCreateAccounts = `CREATE TABLE accounts (
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
	testCreateAuthenticatorApps = `CREATE TABLE authenticator_apps (
    id TEXT NOT NULL PRIMARY KEY,
    user_id TEXT NOT NULL,
    account_name TEXT NOT NULL,
    issuer TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);`
)

func setupTestApp(t *testing.T) (*App, func()) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	for _, ddl := range []string{testCreateUsers, testCreateAccounts, testCreateAuthenticatorApps} {
		_, err = bunDB.Exec(ddl)
		require.NoError(t, err)
	}

	repos := repository.NewManager(bunDB)
	tokens := auth.NewTokenService([]byte("test-signing-key-0123456789abcdef"))
	routes := auth.NewRoutes()

	app := &App{
		config: config.Config{
			Auth: config.Auth{
				SigningKey:        "test-signing-key-0123456789abcdef",
				CookieName:        "launchbay.session-token",
				LoginPath:         "/login",
				OrganizationsPath: "/organizations",
				TokenDuration:     time.Hour,
			},
		},
		logger: glog.NewLogger(glog.WithName("test")),
		bunDB:  bunDB,
		repos:  repos,
		tokens: tokens,
	}
	app.cb = auth.NewCallbacks(
		repos.Accounts(),
		repos.Users(),
		repos.AuthenticatorApps(),
		routes,
	)

	cleanup := func() {
		bunDB.Close()
	}
	return app, cleanup
}

func TestCallbackAllowsLinkedAccountWithoutProfileEmail(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	owner, err := app.repos.Users().Register(context.Background(), &auth.User{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, app.repos.Accounts().Upsert(context.Background(), &auth.Account{
		UserID:            owner.ID,
		Type:              auth.AccountTypeOAuth,
		Provider:          "google",
		ProviderAccountID: "g-123",
	}))

	session := auth.NewSessionMiddleware(app.tokens)
	controller := NewAuthController(app, session)

	ctx := router.NewMockContext()
	ctx.ParamsM["provider"] = "google"
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*CallbackRequest)
		payload.ProviderAccountID = "g-123"
		payload.AccessToken = "tok-1"
		payload.Type = "oauth"
		payload.Profile = auth.Profile{EmailVerified: true}
	}).Return(nil)
	ctx.On("Cookie", mock.Anything).Return()

	var redirectURL string
	ctx.On("Redirect", mock.Anything, []int{http.StatusSeeOther}).Run(func(args mock.Arguments) {
		redirectURL = args.String(0)
	}).Return(nil)

	require.NotPanics(t, func() {
		err = controller.Callback(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, app.config.Auth.OrganizationsPath, redirectURL)

	// The persisted account keeps pointing at the linked owner.
	linked, err := app.repos.Accounts().FindByProvider(context.Background(), "google", "g-123")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, linked.UserID)
	assert.Equal(t, "tok-1", linked.AccessToken)
}

func TestCallbackDeniesUnlinkedAccountWithoutProfileEmail(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	session := auth.NewSessionMiddleware(app.tokens)
	controller := NewAuthController(app, session)

	ctx := router.NewMockContext()
	ctx.ParamsM["provider"] = "google"
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		payload := args.Get(0).(*CallbackRequest)
		payload.ProviderAccountID = "g-999"
		payload.Type = "oauth"
		payload.Profile = auth.Profile{EmailVerified: true}
	}).Return(nil)

	var redirectURL string
	ctx.On("Redirect", mock.Anything, []int{http.StatusSeeOther}).Run(func(args mock.Arguments) {
		redirectURL = args.String(0)
	}).Return(nil)

	// No linked account and no email: the pipeline redirects to the error
	// page instead of reaching the persistence path.
	err := controller.Callback(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.NewRoutes().AuthErrorURL(auth.ErrorCodeMissingOAuthEmail), redirectURL)
}

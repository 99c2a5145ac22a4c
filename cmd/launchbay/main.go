package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	"github.com/launchbay/launchbay/activitymap"
	"github.com/launchbay/launchbay/auth"
	"github.com/launchbay/launchbay/config"
	"github.com/launchbay/launchbay/dashboard"
	"github.com/launchbay/launchbay/organization"
	"github.com/launchbay/launchbay/repository"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// App holds the wired application pieces.
type App struct {
	config   config.Config
	logger   *glog.BaseLogger
	bunDB    *bun.DB
	repos    repository.Manager
	orgs     organization.Repository
	tokens   *auth.TokenService
	verifier auth.TokenVerifier
	cb       *auth.Callbacks
	srv      router.Server[*fiber.App]
}

// GetLogger returns a named child logger.
func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("launchbay"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	app := &App{
		config: config.Load(),
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("persistence bootstrap failed", "error", err)
		os.Exit(1)
	}

	if err := WithPipeline(app); err != nil {
		lgr.Error("pipeline bootstrap failed", "error", err)
		os.Exit(1)
	}

	if err := WithHTTPServer(app); err != nil {
		lgr.Error("http bootstrap failed", "error", err)
		os.Exit(1)
	}

	app.srv.Serve(app.config.Addr)

	WaitExitSignal()
}

// WithPersistence opens the database, registers models, and runs
// migrations.
func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.Persistence.DSN)
	if err != nil {
		return err
	}

	persistence.RegisterModel((*auth.User)(nil))
	persistence.RegisterModel((*auth.Account)(nil))
	persistence.RegisterModel((*auth.AuthenticatorApp)(nil))
	persistence.RegisterModel((*organization.Organization)(nil))
	persistence.RegisterModel((*organization.Membership)(nil))
	persistence.RegisterModel((*organization.Startup)(nil))

	dialect := sqlitedialect.New()
	client, err := persistence.New(app.config.Persistence, db, dialect)
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(repository.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repos = repository.NewManager(app.bunDB)
	app.orgs = organization.NewRepository(app.bunDB)

	return nil
}

// WithPipeline wires the authentication decision pipeline and token
// service.
func WithPipeline(app *App) error {
	authCfg := app.config.Auth

	if authCfg.SigningKey == "" {
		return errors.New("AUTH_SIGNING_KEY is required", errors.CategoryBadInput)
	}

	app.tokens = auth.NewTokenService([]byte(authCfg.SigningKey),
		WithServiceDefaults(authCfg)...,
	)

	// Locally signed tokens always verify against the token service; when a
	// JWKS endpoint is configured, externally issued tokens verify too.
	app.verifier = app.tokens
	if authCfg.JWKSEndpoint != "" {
		jwks, err := auth.NewJWKSVerifier(authCfg.JWKSEndpoint, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  time.Minute * 5,
			RefreshTimeout:    time.Second * 10,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				app.GetLogger("auth:jwks").Warn("failed to refresh JWK Set", "error", err)
			},
		})
		if err != nil {
			return err
		}
		app.verifier = auth.NewMultiVerifier(app.tokens, jwks)
	}

	routes := auth.NewRoutes(
		auth.WithBaseURL(authCfg.BaseURL),
		auth.WithAuthErrorPath(authCfg.AuthErrorPath),
		auth.WithOrganizationsPath(authCfg.OrganizationsPath),
		auth.WithTOTPChallengePath(authCfg.TOTPChallengePath),
	)

	app.cb = auth.NewCallbacks(
		app.repos.Accounts(),
		app.repos.Users(),
		app.repos.AuthenticatorApps(),
		routes,
		auth.WithLogger(app.GetLogger("auth")),
		auth.WithTokenVerifier(app.verifier),
		auth.WithActivitySink(newActivityLogger(app.GetLogger("activity"))),
	)

	return nil
}

// newActivityLogger records normalized sign-in decisions through the
// structured logger.
func newActivityLogger(lgr glog.Logger) auth.ActivitySinkFunc {
	return func(_ context.Context, event auth.ActivityEvent) error {
		record := activitymap.Normalize(event)
		lgr.Info("sign-in activity",
			"actor_id", record.ActorID,
			"verb", record.Verb,
			"object_id", record.ObjectID,
			"channel", record.Channel,
			"metadata", record.Metadata,
		)
		return nil
	}
}

// WithServiceDefaults maps the auth config onto token service options.
func WithServiceDefaults(cfg config.Auth) []auth.TokenServiceOption {
	opts := []auth.TokenServiceOption{
		auth.WithTokenIssuer("launchbay"),
		auth.WithTokenDuration(cfg.TokenDuration),
	}
	return opts
}

// WithHTTPServer builds the fiber server and mounts the routes.
func WithHTTPServer(app *App) error {
	engine := django.New("./views", ".html")
	engine.AddFuncMap(dashboard.TemplateHelpers())

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	session := auth.NewSessionMiddleware(app.verifier)
	session.CookieName = app.config.Auth.CookieName
	session.LoginPath = app.config.Auth.LoginPath
	session.Logger = app.GetLogger("session")

	srv.Router().Use(session.Load())

	authController := NewAuthController(app, session)
	authController.RegisterRoutes(srv.Router())

	api := srv.Router().Group("/api")
	api.Use(session.Require())

	orgController := organization.NewHTTPController(app.orgs,
		organization.WithControllerLogger(app.GetLogger("organizations")),
	)
	orgController.RegisterRoutes(api)

	app.srv = srv
	return nil
}

// WaitExitSignal blocks until the process receives an exit signal.
func WaitExitSignal() os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return <-sigCh
}

package organization

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/goliatone/go-errors"
	repobun "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// Logger is the minimal logging surface the controller needs.
type Logger interface {
	Error(format string, args ...any)
}

// HTTPController serves the organization REST endpoints.
type HTTPController struct {
	repo   Repository
	logger Logger
}

// ControllerOption mutates the controller during construction.
type ControllerOption func(*HTTPController)

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *HTTPController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// NewHTTPController creates the organization controller.
func NewHTTPController(repo Repository, opts ...ControllerOption) *HTTPController {
	c := &HTTPController{
		repo:   repo,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// RegisterRoutes registers the organization routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/organization", c.List)
	group.Post("/organization", c.Create)
	group.Get("/organization/:id", c.Show)
	group.Put("/organization/:id", c.Update)
	group.Delete("/organization/:id", c.Delete)
}

// List returns a paginated organization listing with optional search.
func (c *HTTPController) List(ctx router.Context) error {
	query := ListQuery{
		Page:     queryInt(ctx, "page", 1),
		PageSize: queryInt(ctx, "pageSize", DefaultPageSize),
		Search:   ctx.Query("search"),
	}

	page, err := c.repo.List(ctx.Context(), query)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, page)
}

// Show returns one organization with its members and startups.
func (c *HTTPController) Show(ctx router.Context) error {
	org, err := c.repo.GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if isNotFound(err) {
			return ctx.JSON(http.StatusNotFound, map[string]string{
				"error": "organization not found",
			})
		}
		return c.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"data": org,
	})
}

// Create validates the payload and creates an organization.
func (c *HTTPController) Create(ctx router.Context) error {
	payload := new(CreateOrganizationRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation error",
			"fields": err,
		})
	}

	created, err := c.repo.Create(ctx.Context(), payload.Model())
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]any{
		"data": created,
	})
}

// Update applies the provided fields to an existing organization.
func (c *HTTPController) Update(ctx router.Context) error {
	payload := new(UpdateOrganizationRequest)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation error",
			"fields": err,
		})
	}

	org, err := c.repo.GetByID(ctx.Context(), ctx.Param("id"))
	if err != nil {
		if isNotFound(err) {
			return ctx.JSON(http.StatusNotFound, map[string]string{
				"error": "organization not found",
			})
		}
		return c.fail(ctx, err)
	}

	payload.Apply(org)

	updated, err := c.repo.Update(ctx.Context(), org)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"data": updated,
	})
}

// Delete removes an organization unless members or startups still
// reference it.
func (c *HTTPController) Delete(ctx router.Context) error {
	id := ctx.Param("id")

	if _, err := c.repo.GetByID(ctx.Context(), id); err != nil {
		if isNotFound(err) {
			return ctx.JSON(http.StatusNotFound, map[string]string{
				"error": "organization not found",
			})
		}
		return c.fail(ctx, err)
	}

	if err := c.repo.Delete(ctx.Context(), id); err != nil {
		if errors.Is(err, ErrHasDependents) {
			return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": "cannot delete organization with associated users or startups",
			})
		}
		return c.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"message": "organization deleted",
	})
}

func (c *HTTPController) fail(ctx router.Context, err error) error {
	c.logger.Error("organization request failed: %v", err)
	return ctx.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func queryInt(ctx router.Context, name string, def int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func isNotFound(err error) bool {
	return repobun.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}

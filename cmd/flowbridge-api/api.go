// Package main provides the Flowbridge API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowbridge/flowbridge/pkg/auth"
	"github.com/flowbridge/flowbridge/pkg/bridge"
	"github.com/flowbridge/flowbridge/pkg/cmd"
	"github.com/flowbridge/flowbridge/pkg/config"
	"github.com/flowbridge/flowbridge/pkg/otelhelper"
	"github.com/flowbridge/flowbridge/pkg/persistence"
	"github.com/flowbridge/flowbridge/pkg/provision"
	"github.com/flowbridge/flowbridge/pkg/reconcile"
	"github.com/flowbridge/flowbridge/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	reconciler  *reconcile.Reconciler
	guard       *auth.Guard
	bridge      *bridge.Bridge
	validate    *validator.Validate
	tracer      trace.Tracer
}

// NewAPI wires the API server: provisioning, host bridge, guards and tracing.
func NewAPI(
	ctx context.Context,
	logger *slog.Logger,
	store persistence.Persistence,
	cfg config.Config,
	apiToken string,
) (*API, error) {
	reconciler := reconcile.NewReconciler(store.WorkflowRepository(), logger)

	provisioner := provision.NewProvisioner(
		store.UserRepository(),
		store.ProjectRepository(),
		logger,
		cfg.LocalMode,
		cfg.AdminEmail,
		cfg.AdminPassword,
	)

	// Provisioning failure degrades to "no admin"; the instance still serves.
	admin, err := provisioner.EnsureLocalAdmin(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Local admin provisioning failed", "error", err)
	}

	publisher, subscriber, err := cmd.NewChannel(cfg.Bridge.Channel, logger)
	if err != nil {
		return nil, err
	}

	hostBridge := bridge.NewBridge(cfg.Bridge.Enabled, publisher, subscriber, reconciler, logger)

	tracer, err := otelhelper.NewTracer(ctx, "flowbridge-api")
	if err != nil {
		return nil, err
	}

	return &API{
		logger:      logger,
		persistence: store,
		reconciler:  reconciler,
		guard:       auth.NewGuard(cfg.LocalMode, admin, apiToken),
		bridge:      hostBridge,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		tracer:      tracer,
	}, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(
		a.persistence.WorkflowRepository(),
		a.reconciler,
		a.validate,
		a.tracer,
		a.logger,
		a.healthCheck,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowbridge API")
	})

	app.Get("/signin", func(c fiber.Ctx) error {
		return c.SendString("Sign in")
	}, a.guard.GuestOnly("/"))

	w := app.Group("/workflows", a.guard.RequireAuth())
	w.Get("/", handlers.GetWorkflows)
	w.Get("/:id", handlers.GetWorkflow)

	app.Post("/sync", handlers.SyncWorkflow, a.guard.RequireAuth())

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) healthCheck(c fiber.Ctx) (string, bool) {
	if err := a.persistence.HealthCheck(c.Context()); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Start attaches the bridge listener and serves HTTP until shutdown.
func (a *API) Start(ctx context.Context, port int) error {
	if err := a.bridge.Listen(ctx); err != nil {
		return err
	}

	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

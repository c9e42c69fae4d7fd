// Package web provides the HTTP handlers for the sync API.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/otelhelper"
	"github.com/flowbridge/flowbridge/pkg/persistence"
	"github.com/flowbridge/flowbridge/pkg/reconcile"
	"github.com/flowbridge/flowbridge/pkg/schema"
)

type APIHandlers struct {
	workflows  persistence.WorkflowRepository
	reconciler *reconcile.Reconciler
	validator  *validator.Validate
	tracer     trace.Tracer
	logger     *slog.Logger
	health     func(fiber.Ctx) (string, bool)
}

func NewAPIHandlers(
	workflows persistence.WorkflowRepository,
	reconciler *reconcile.Reconciler,
	validator *validator.Validate,
	tracer trace.Tracer,
	logger *slog.Logger,
	health func(fiber.Ctx) (string, bool),
) *APIHandlers {
	return &APIHandlers{
		workflows:  workflows,
		reconciler: reconciler,
		validator:  validator,
		tracer:     tracer,
		logger:     logger,
		health:     health,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	query := c.Query("name")

	var (
		workflows []*models.Workflow
		err       error
	)

	if query != "" {
		workflows, err = h.workflows.SearchByName(c.Context(), query)
	} else {
		workflows, err = h.workflows.List(c.Context())
	}

	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflows.GetByID(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	if workflow == nil {
		return notFound(c, "Workflow not found")
	}

	return c.JSON(workflow)
}

// SyncWorkflow reconciles a posted workflow document against the store and
// returns the action taken.
func (h *APIHandlers) SyncWorkflow(c fiber.Ctx) error {
	body := c.Body()

	if err := schema.ValidateDocument(body); err != nil {
		return badRequest(c, "Invalid workflow document: "+err.Error())
	}

	var doc models.Workflow
	if err := json.Unmarshal(body, &doc); err != nil {
		return badRequest(c, "Invalid workflow document: "+err.Error())
	}

	if err := h.validator.Struct(&doc); err != nil {
		return badRequest(c, "Invalid workflow document: "+err.Error())
	}

	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "workflow.sync",
		attribute.String(otelhelper.WorkflowNameKey, doc.Name),
		attribute.String(otelhelper.SyncSourceKey, "http"),
	)
	defer span.End()

	result, err := h.reconciler.Sync(ctx, &doc)
	if err != nil {
		span.RecordError(err)

		return handleSyncError(c, err)
	}

	span.SetAttributes(
		attribute.String(otelhelper.WorkflowIDKey, result.Workflow.ID),
		attribute.String(otelhelper.SyncActionKey, string(result.Action)),
	)

	status := fiber.StatusOK
	if result.Action == models.ActionCreated {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(result)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, ok := h.health(c)

	status := "healthy"
	httpStatus := http.StatusOK

	if !ok {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
	})
}

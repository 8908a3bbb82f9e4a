package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
)

// ExecutionHandler maneja las peticiones HTTP del ejecutor (protegido).
type ExecutionHandler struct {
	exec *execution.Executor
}

// NewExecutionHandler construye el handler.
func NewExecutionHandler(exec *execution.Executor) *ExecutionHandler {
	return &ExecutionHandler{exec: exec}
}

// Execute despacha un comando sensible a través del núcleo de gobernanza.
// "pending_approval" responde 200: es un desenlace normal, no un error.
// POST /api/execution/execute
func (h *ExecutionHandler) Execute(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ExecuteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "cuerpo inválido"})
	}
	if in.CommandType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "command_type requerido"})
	}

	result, err := h.exec.Execute(c.Context(), in.CommandType, in.Payload, actor)
	if err != nil {
		return mapExecutionError(c, err)
	}
	return c.JSON(dto.ExecuteResponse{
		Status:      result.Status,
		ExecutionID: result.ExecutionID,
		CommandType: result.CommandType,
		Level:       string(result.Level),
		Reason:      result.Reason,
	})
}

// Rollback revierte una ejecución previa dentro de la ventana fija.
// POST /api/execution/:id/rollback
func (h *ExecutionHandler) Rollback(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	executionID := c.Params("id")
	if executionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "id requerido"})
	}
	var in dto.RollbackRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "cuerpo inválido"})
	}

	result, err := h.exec.Rollback(c.Context(), executionID, in.Reason, actor)
	if err != nil {
		return mapExecutionError(c, err)
	}
	return c.JSON(dto.RollbackResponse{
		Status:      result.Status,
		ExecutionID: result.ExecutionID,
		RollbackID:  result.RollbackID,
	})
}

// mapExecutionError traduce los errores tipados del core a estados HTTP:
// permisos -> 403, ventana vencida -> 409, el resto de errores de ejecución
// -> 400 con su código estable, lo inesperado -> 500.
func mapExecutionError(c *fiber.Ctx, err error) error {
	var denied *domain.PermissionDeniedError
	if errors.As(err, &denied) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: domain.CodePermissionDenied, Message: denied.Error()})
	}
	var expired *domain.RollbackWindowExpiredError
	if errors.As(err, &expired) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: domain.CodeRollbackWindowExpired, Message: expired.Error()})
	}
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		status := fiber.StatusBadRequest
		if execErr.Code == domain.CodeInternal {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: execErr.Code, Message: execErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: domain.CodeInternal, Message: err.Error()})
}

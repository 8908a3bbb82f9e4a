package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/reports"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
)

// AuditHandler consulta del ledger de auditoría (protegido).
type AuditHandler struct {
	query  *execution.AuditQueryUseCase
	report *reports.AuditReportUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(query *execution.AuditQueryUseCase, report *reports.AuditReportUseCase) *AuditHandler {
	return &AuditHandler{query: query, report: report}
}

// List lista registros del ledger con filtros y paginación.
// GET /api/execution/audit-logs
func (h *AuditHandler) List(c *fiber.Ctx) error {
	if _, ok := GetActor(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "filtros inválidos"})
	}
	records, err := h.query.Query(c.Context(), q)
	if err != nil {
		return mapExecutionError(c, err)
	}
	return c.JSON(fiber.Map{"records": records, "count": len(records)})
}

// Integrity verifica el sello de integridad de los registros que matchean el
// filtro y reporta los execution_ids adulterados.
// GET /api/execution/audit-logs/integrity
func (h *AuditHandler) Integrity(c *fiber.Ctx) error {
	if _, ok := GetActor(c); !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "filtros inválidos"})
	}
	resp, err := h.query.VerifyIntegrity(c.Context(), q)
	if err != nil {
		return mapExecutionError(c, err)
	}
	return c.JSON(resp)
}

// Export genera el PDF de cumplimiento con los registros filtrados.
// GET /api/execution/audit-logs/export
func (h *AuditHandler) Export(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidPayload, Message: "filtros inválidos"})
	}
	pdfBytes, err := h.report.Export(c.Context(), q, actor)
	if err != nil {
		return mapExecutionError(c, err)
	}
	filename := fmt.Sprintf("audit-trail-%s.pdf", time.Now().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/auth"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/reports"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Executor  *execution.Executor
	AuditUC   *execution.AuditQueryUseCase
	ReportUC  *reports.AuditReportUseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Ejecución gobernada (protegido)
	execGroup := protected.Group("/execution")
	executionHandler := NewExecutionHandler(deps.Executor)
	execGroup.Post("/execute", executionHandler.Execute)
	execGroup.Post("/:id/rollback", executionHandler.Rollback)

	// Ledger de auditoría (protegido)
	auditHandler := NewAuditHandler(deps.AuditUC, deps.ReportUC)
	execGroup.Get("/audit-logs", auditHandler.List)
	execGroup.Get("/audit-logs/integrity", auditHandler.Integrity)
	execGroup.Get("/audit-logs/export", auditHandler.Export)
}

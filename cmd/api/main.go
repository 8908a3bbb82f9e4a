package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/auth"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/reports"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/governance"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/repository"
	infrakafka "github.com/hnrm110901-cell/zhilian-os-sub006/internal/infrastructure/kafka"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/infrastructure/memory"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/infrastructure/ops"
	infrapdf "github.com/hnrm110901-cell/zhilian-os-sub006/internal/infrastructure/pdf"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/infrastructure/postgres"
	httpRouter "github.com/hnrm110901-cell/zhilian-os-sub006/internal/interfaces/http"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/config"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/logger"

	_ "github.com/hnrm110901-cell/zhilian-os-sub006/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Backend del ledger: postgres en operación normal, memoria para
	// desarrollo local sin DB.
	var (
		recordRepo repository.ExecutionRecordRepository
		userRepo   repository.UserRepository
	)
	if cfg.Store.Backend == "postgres" {
		if err := postgres.Migrate(cfg.DB); err != nil {
			log.Fatal().Err(err).Msg("migraciones de base de datos")
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		recordRepo = postgres.NewExecutionRecordRepository(pool)
		userRepo = postgres.NewUserRepository(pool)
	} else {
		recordRepo = memory.NewExecutionRecordRepository()
		userRepo = memory.NewUserRepository()
	}

	// Catálogo inmutable de comandos gobernados.
	registry, err := governance.NewCommandRegistry(governance.DefaultCatalog())
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo de comandos inválido")
	}

	// Tabla de handlers: cada comando del catálogo debe tener el suyo,
	// o la aplicación se niega a arrancar.
	handlers := execution.NewHandlerRegistry()
	if err := ops.RegisterCatalogHandlers(handlers, log); err != nil {
		log.Fatal().Err(err).Msg("registro de handlers")
	}
	if err := handlers.EnsureCovers(registry); err != nil {
		log.Fatal().Err(err).Msg("cobertura de handlers incompleta")
	}

	// Publicador de eventos NOTIFY; opcional.
	var notifier execution.Notifier
	if cfg.Kafka.Enabled {
		kafkaNotifier, err := infrakafka.NewNotifier(cfg.Kafka.BootstrapServers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Fatal().Err(err).Msg("productor Kafka")
		}
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
	}

	executor := execution.NewExecutor(registry, handlers, recordRepo, notifier, log)
	auditUC := execution.NewAuditQueryUseCase(recordRepo)
	reportUC := reports.NewAuditReportUseCase(auditUC, infrapdf.NewMarotoAuditReportGenerator())
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Governance API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Executor:  executor,
		AuditUC:   auditUC,
		ReportUC:  reportUC,
		AuthUC:    authUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

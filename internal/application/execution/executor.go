// Package execution orquesta el ciclo de vida de un comando sensible:
// permisos, clasificación de riesgo, despacho del efecto, auditoría y
// reversión acotada en el tiempo. Es el único punto de entrada del core.
package execution

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/audit"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/governance"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/repository"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/logger"
)

// Estados de resultado visibles para el caller. "pending_approval" es un
// desenlace normal, no un fallo: el caller enruta la solicitud a la cola de
// aprobación externa.
const (
	StatusCompleted       = "completed"
	StatusPendingApproval = "pending_approval"
	StatusRolledBack      = "rolled_back"
)

// ExecutionResult variante de desenlace de Execute.
type ExecutionResult struct {
	Status      string
	ExecutionID string
	CommandType string
	Level       entity.ExecLevel
	Reason      string
	RollbackID  string // solo en resultados de Rollback
}

// Executor orquesta ejecución y rollback. Se invoca concurrentemente, una vez
// por request, sin locks globales: todo el estado compartido mutable vive en
// el repositorio y se transiciona por compare-and-set.
type Executor struct {
	registry   *governance.CommandRegistry
	perms      *governance.PermissionResolver
	classifier *governance.RiskClassifier
	handlers   *HandlerRegistry
	records    repository.ExecutionRecordRepository
	notifier   Notifier // opcional; nil = sin publicación
	log        *logger.Logger
	now        func() time.Time
}

// NewExecutor construye el ejecutor con sus colaboradores inyectados.
func NewExecutor(
	registry *governance.CommandRegistry,
	handlers *HandlerRegistry,
	records repository.ExecutionRecordRepository,
	notifier Notifier,
	log *logger.Logger,
) *Executor {
	return &Executor{
		registry:   registry,
		perms:      governance.NewPermissionResolver(),
		classifier: governance.NewRiskClassifier(),
		handlers:   handlers,
		records:    records,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (para tests de la ventana de rollback).
func (e *Executor) WithClock(now func() time.Time) *Executor {
	e.now = now
	return e
}

// Execute clasifica y ejecuta un comando en nombre del actor.
//
// Orden estricto: registro -> permisos -> clasificación -> efecto -> auditoría.
// Un comando APPROVE no ejecuta el efecto ni escribe registro. Un handler que
// falla tampoco deja registro: el ledger no admite entradas fantasma.
func (e *Executor) Execute(ctx context.Context, commandType string, payload map[string]any, actor entity.Actor) (*ExecutionResult, error) {
	def, err := e.registry.Get(commandType)
	if err != nil {
		return nil, err
	}

	if err := e.perms.Check(actor, def); err != nil {
		e.log.Warn().
			Str("command_type", commandType).
			Str("actor_id", actor.UserID).
			Str("role", actor.Role).
			Msg("permiso denegado")
		return nil, err
	}

	amount, err := amountFromPayload(payload)
	if err != nil {
		return nil, err
	}

	cls := e.classifier.Classify(def, amount)
	if cls.Level == entity.LevelApprove {
		e.log.Info().
			Str("command_type", commandType).
			Str("actor_id", actor.UserID).
			Bool("breaker_tripped", cls.BreakerTripped).
			Msg("comando escalado a aprobación")
		return &ExecutionResult{
			Status:      StatusPendingApproval,
			CommandType: commandType,
			Level:       cls.Level,
			Reason:      cls.Reason,
		}, nil
	}

	handler := e.handlers.Get(commandType)
	if handler == nil {
		// EnsureCovers lo impide en el arranque; esto es un invariante roto
		return nil, domain.NewExecutionError(domain.CodeInternal, "sin handler para %q", commandType)
	}

	if err := handler.Execute(ctx, payload, actor); err != nil {
		e.log.Error().Err(err).
			Str("command_type", commandType).
			Str("actor_id", actor.UserID).
			Msg("handler de comando falló")
		return nil, domain.WrapExecutionError(domain.CodeHandlerFailed, err, "el comando %q falló", commandType)
	}

	// timestamptz guarda microsegundos: sellar con más precisión haría que
	// todo registro leído de la base verificara como adulterado
	now := e.now().Truncate(time.Microsecond)
	rec := &entity.ExecutionRecord{
		ExecutionID:     uuid.New().String(),
		CommandType:     commandType,
		ActorID:         actor.UserID,
		ActorRole:       actor.Role,
		StoreID:         actor.StoreID,
		BrandID:         actor.BrandID,
		Status:          entity.StatusCompleted,
		Level:           cls.Level,
		Amount:          amount,
		PayloadSnapshot: redactPayload(payload),
		Reason:          cls.Reason,
		ExecutedAt:      now,
		CreatedAt:       now,
	}
	seal, err := audit.Seal(rec)
	if err != nil {
		return nil, domain.WrapExecutionError(domain.CodeInternal, err, "sellar registro")
	}
	rec.Seal = seal

	if err := e.records.Create(ctx, rec); err != nil {
		return nil, domain.WrapExecutionError(domain.CodeInternal, err, "escribir registro de auditoría")
	}

	e.log.Info().
		Str("execution_id", rec.ExecutionID).
		Str("command_type", commandType).
		Str("level", string(cls.Level)).
		Str("actor_id", actor.UserID).
		Msg("comando ejecutado")

	if cls.Level == entity.LevelNotify {
		e.notify(ctx, NotifyEvent{
			EventType:      EventExecutionCompleted,
			ExecutionID:    rec.ExecutionID,
			CommandType:    commandType,
			ActorID:        actor.UserID,
			ActorRole:      actor.Role,
			StoreID:        actor.StoreID,
			BrandID:        actor.BrandID,
			Level:          string(cls.Level),
			Amount:         amount,
			BreakerTripped: cls.BreakerTripped,
			OccurredAt:     now,
		})
	}

	return &ExecutionResult{
		Status:      StatusCompleted,
		ExecutionID: rec.ExecutionID,
		CommandType: commandType,
		Level:       cls.Level,
	}, nil
}

// notify publica en best-effort: la entrega nunca hace fallar la operación.
func (e *Executor) notify(ctx context.Context, event NotifyEvent) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, event); err != nil {
		e.log.Warn().Err(err).
			Str("execution_id", event.ExecutionID).
			Str("event_type", event.EventType).
			Msg("no se pudo publicar el evento de gobernanza")
	}
}

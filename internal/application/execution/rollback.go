package execution

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/audit"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/governance"
)

// Rollback revierte una ejecución previa dentro de la ventana fija.
//
// Orden estricto: lookup -> permisos -> ventana -> transición exclusiva ->
// handler compensatorio -> registro del rollback + rollback_id + finalizar.
// La transición completed -> rolling_back es compare-and-set en storage: de
// dos rollbacks concurrentes sobre el mismo id, exactamente uno avanza.
func (e *Executor) Rollback(ctx context.Context, executionID, reason string, actor entity.Actor) (*ExecutionResult, error) {
	rec, err := e.records.GetByID(ctx, executionID)
	if err != nil {
		return nil, domain.WrapExecutionError(domain.CodeInternal, err, "leer registro %s", executionID)
	}
	if rec == nil {
		return nil, domain.NewExecutionError(domain.CodeExecutionNotFound, "ejecución %s no encontrada", executionID)
	}

	def, err := e.registry.Get(rec.CommandType)
	if err != nil {
		return nil, err
	}
	if err := e.perms.Check(actor, def); err != nil {
		return nil, err
	}

	// Ventana data-driven sobre executed_at, uniforme para todos los roles;
	// super_admin no está exento (control de riesgo, no de identidad).
	elapsed := e.now().Sub(rec.ExecutedAt)
	if elapsed > governance.RollbackWindow {
		return nil, &domain.RollbackWindowExpiredError{
			ExecutionID: executionID,
			Elapsed:     elapsed,
			Window:      governance.RollbackWindow,
		}
	}

	if err := e.records.MarkRollingBack(ctx, executionID); err != nil {
		return nil, err
	}

	handler := e.handlers.Get(rec.CommandType)
	if handler == nil {
		_ = e.records.RevertRollingBack(ctx, executionID)
		return nil, domain.NewExecutionError(domain.CodeInternal, "sin handler para %q", rec.CommandType)
	}

	if err := handler.Compensate(ctx, rec.PayloadSnapshot, actor); err != nil {
		// el efecto no se revirtió: devolver el registro a completed
		if revertErr := e.records.RevertRollingBack(ctx, executionID); revertErr != nil {
			e.log.Error().Err(revertErr).
				Str("execution_id", executionID).
				Msg("no se pudo revertir la transición rolling_back")
		}
		return nil, domain.WrapExecutionError(domain.CodeHandlerFailed, err, "la compensación de %q falló", rec.CommandType)
	}

	// misma precisión que timestamptz, igual que en Execute
	now := e.now().Truncate(time.Microsecond)
	rbRec := &entity.ExecutionRecord{
		ExecutionID: uuid.New().String(),
		CommandType: rec.CommandType,
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		StoreID:     rec.StoreID,
		BrandID:     rec.BrandID,
		Status:      entity.StatusCompleted,
		Level:       rec.Level,
		Amount:      rec.Amount,
		PayloadSnapshot: map[string]any{
			"rollback_of": rec.ExecutionID,
			"snapshot":    rec.PayloadSnapshot,
		},
		Reason:     reason,
		ExecutedAt: now,
		CreatedAt:  now,
	}
	seal, err := audit.Seal(rbRec)
	if err != nil {
		return nil, domain.WrapExecutionError(domain.CodeInternal, err, "sellar registro de rollback")
	}
	rbRec.Seal = seal

	if err := e.records.Create(ctx, rbRec); err != nil {
		return nil, domain.WrapExecutionError(domain.CodeInternal, err, "escribir registro de rollback")
	}
	if err := e.records.CompleteRollback(ctx, executionID, rbRec.ExecutionID); err != nil {
		return nil, err
	}

	e.log.Info().
		Str("execution_id", executionID).
		Str("rollback_id", rbRec.ExecutionID).
		Str("command_type", rec.CommandType).
		Str("actor_id", actor.UserID).
		Msg("ejecución revertida")

	e.notify(ctx, NotifyEvent{
		EventType:   EventExecutionRolledBack,
		ExecutionID: executionID,
		CommandType: rec.CommandType,
		ActorID:     actor.UserID,
		ActorRole:   actor.Role,
		StoreID:     rec.StoreID,
		BrandID:     rec.BrandID,
		Level:       string(rec.Level),
		Amount:      rec.Amount,
		OccurredAt:  now,
	})

	return &ExecutionResult{
		Status:      StatusRolledBack,
		ExecutionID: executionID,
		CommandType: rec.CommandType,
		Level:       rec.Level,
		RollbackID:  rbRec.ExecutionID,
	}, nil
}

package repository

import (
	"context"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// AuditFilter filtros de consulta del ledger. Campos vacíos no filtran.
type AuditFilter struct {
	StoreID     string
	BrandID     string
	CommandType string
	ActorID     string
	Status      string
	Limit       int
	Offset      int
}

// ExecutionRecordRepository puerto del audit store: ledger append-mostly.
// Las escrituras llegan solo desde el ejecutor y el rollback; ningún otro
// componente muta un registro después de creado.
//
// Las transiciones de estado son compare-and-set en la frontera de storage
// (UPDATE condicional), nunca read-then-write.
type ExecutionRecordRepository interface {
	// Create persiste un registro nuevo. El execution_id no se reutiliza jamás.
	Create(ctx context.Context, rec *entity.ExecutionRecord) error

	// GetByID devuelve el registro o (nil, nil) si no existe.
	GetByID(ctx context.Context, executionID string) (*entity.ExecutionRecord, error)

	// MarkRollingBack transiciona completed -> rolling_back de forma exclusiva.
	// Si otro rollback ya está en curso (o el estado no es completed) devuelve
	// ExecutionError{ROLLBACK_CONFLICT}.
	MarkRollingBack(ctx context.Context, executionID string) error

	// CompleteRollback transiciona rolling_back -> rolled_back y fija
	// rollback_id exactamente una vez (falla si ya estaba fijado).
	CompleteRollback(ctx context.Context, executionID, rollbackID string) error

	// RevertRollingBack devuelve rolling_back -> completed tras un fallo del
	// handler compensatorio.
	RevertRollingBack(ctx context.Context, executionID string) error

	// Query lista registros ordenados por created_at desc.
	Query(ctx context.Context, f AuditFilter) ([]*entity.ExecutionRecord, error)
}

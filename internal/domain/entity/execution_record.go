package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecutionStatus estado de un registro de ejecución.
// La única transición legal es completed -> rolling_back -> rolled_back.
type ExecutionStatus string

const (
	StatusCompleted   ExecutionStatus = "completed"
	StatusRollingBack ExecutionStatus = "rolling_back"
	StatusRolledBack  ExecutionStatus = "rolled_back"
	// StatusFailed pertenece al dominio de estados del ledger pero ningún
	// camino del core lo persiste: una invocación fallida no deja registro.
	StatusFailed ExecutionStatus = "failed"
)

// ExecutionRecord entrada del ledger de auditoría. Inmutable una vez escrita
// salvo status y rollback_id; payload_snapshot y executed_at jamás se reescriben.
type ExecutionRecord struct {
	ExecutionID     string
	CommandType     string
	ActorID         string
	ActorRole       string
	StoreID         string
	BrandID         string
	Status          ExecutionStatus
	Level           ExecLevel
	Amount          *decimal.Decimal // nil si el comando no es monetario
	PayloadSnapshot map[string]any   // copia redactada de los inputs
	Reason          string           // motivo de escalamiento o de reversión
	ExecutedAt      time.Time
	CreatedAt       time.Time
	RollbackID      *string // execution_id de la acción compensatoria; se fija una sola vez
	Seal            string  // sello de integridad SHA3 sobre los campos inmutables
}

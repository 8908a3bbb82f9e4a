package dto

import "time"

// ExecuteRequest body de POST /api/execution/execute.
type ExecuteRequest struct {
	CommandType string         `json:"command_type"`
	Payload     map[string]any `json:"payload"`
}

// ExecuteResponse resultado de una ejecución. "pending_approval" es un
// desenlace normal (200), nunca un error HTTP: el cliente no debe confundir
// "necesita aprobación" con "falló".
type ExecuteResponse struct {
	Status      string `json:"status"` // completed | pending_approval
	ExecutionID string `json:"execution_id,omitempty"`
	CommandType string `json:"command_type"`
	Level       string `json:"level"`
	Reason      string `json:"reason,omitempty"`
}

// RollbackRequest body de POST /api/execution/:id/rollback.
type RollbackRequest struct {
	Reason string `json:"reason"`
}

// RollbackResponse resultado de una reversión.
type RollbackResponse struct {
	Status      string `json:"status"` // rolled_back
	ExecutionID string `json:"execution_id"`
	RollbackID  string `json:"rollback_id"`
}

// AuditLogQuery filtros de GET /api/execution/audit-logs.
type AuditLogQuery struct {
	StoreID     string `query:"store_id"`
	BrandID     string `query:"brand_id"`
	CommandType string `query:"command_type"`
	ActorID     string `query:"actor_id"`
	Status      string `query:"status"`
	PageRequest
}

// ExecutionRecordDTO proyección JSON de un registro del ledger.
type ExecutionRecordDTO struct {
	ExecutionID     string         `json:"execution_id"`
	CommandType     string         `json:"command_type"`
	ActorID         string         `json:"actor_id"`
	ActorRole       string         `json:"actor_role"`
	StoreID         string         `json:"store_id"`
	BrandID         string         `json:"brand_id"`
	Status          string         `json:"status"`
	Level           string         `json:"level"`
	Amount          *string        `json:"amount,omitempty"`
	PayloadSnapshot map[string]any `json:"payload_snapshot"`
	Reason          string         `json:"reason,omitempty"`
	ExecutedAt      time.Time      `json:"executed_at"`
	CreatedAt       time.Time      `json:"created_at"`
	RollbackID      *string        `json:"rollback_id,omitempty"`
	Seal            string         `json:"seal"`
}

// AuditIntegrityResponse resultado de la verificación del sello del ledger.
type AuditIntegrityResponse struct {
	Checked  int      `json:"checked"`
	Tampered []string `json:"tampered"` // execution_ids con sello inválido
}

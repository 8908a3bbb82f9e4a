// Package memory implementa los puertos de persistencia sobre memoria, con
// las mismas semánticas compare-and-set que el backend Postgres. Se usa en
// tests y en desarrollo local sin base de datos (STORE_BACKEND=memory).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/repository"
)

var _ repository.ExecutionRecordRepository = (*ExecutionRecordRepo)(nil)

// ExecutionRecordRepo ledger en memoria protegido por mutex. Las transiciones
// de estado se evalúan bajo el lock, equivalentes al UPDATE condicional del
// backend SQL.
type ExecutionRecordRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.ExecutionRecord
	seq  []*entity.ExecutionRecord // orden de inserción
}

// NewExecutionRecordRepository construye el ledger vacío.
func NewExecutionRecordRepository() *ExecutionRecordRepo {
	return &ExecutionRecordRepo{byID: make(map[string]*entity.ExecutionRecord)}
}

// Create persiste una copia del registro. Rechaza execution_id repetido.
func (r *ExecutionRecordRepo) Create(_ context.Context, rec *entity.ExecutionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byID[rec.ExecutionID]; dup {
		return domain.NewExecutionError(domain.CodeInternal, "execution_id repetido %s", rec.ExecutionID)
	}
	cp := cloneRecord(rec)
	r.byID[cp.ExecutionID] = cp
	r.seq = append(r.seq, cp)
	return nil
}

// GetByID devuelve una copia o (nil, nil) si no existe.
func (r *ExecutionRecordRepo) GetByID(_ context.Context, executionID string) (*entity.ExecutionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[executionID]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

// MarkRollingBack transición exclusiva completed -> rolling_back.
func (r *ExecutionRecordRepo) MarkRollingBack(_ context.Context, executionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[executionID]
	if !ok || rec.Status != entity.StatusCompleted {
		return domain.NewExecutionError(domain.CodeRollbackConflict,
			"la ejecución %s no está en completed (otro rollback en curso?)", executionID)
	}
	rec.Status = entity.StatusRollingBack
	return nil
}

// CompleteRollback transición rolling_back -> rolled_back; rollback_id se
// fija a lo sumo una vez.
func (r *ExecutionRecordRepo) CompleteRollback(_ context.Context, executionID, rollbackID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[executionID]
	if !ok || rec.Status != entity.StatusRollingBack || rec.RollbackID != nil {
		return domain.NewExecutionError(domain.CodeRollbackConflict,
			"no se puede finalizar el rollback de %s", executionID)
	}
	rec.Status = entity.StatusRolledBack
	rec.RollbackID = &rollbackID
	return nil
}

// RevertRollingBack devuelve rolling_back -> completed.
func (r *ExecutionRecordRepo) RevertRollingBack(_ context.Context, executionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[executionID]
	if !ok || rec.Status != entity.StatusRollingBack {
		return domain.NewExecutionError(domain.CodeRollbackConflict,
			"la ejecución %s no está en rolling_back", executionID)
	}
	rec.Status = entity.StatusCompleted
	return nil
}

// Query filtra y ordena por created_at desc; los empates de created_at
// conservan el orden de inserción (sort estable).
func (r *ExecutionRecordRepo) Query(_ context.Context, f repository.AuditFilter) ([]*entity.ExecutionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*entity.ExecutionRecord, 0, len(r.seq))
	for _, rec := range r.seq {
		if f.StoreID != "" && rec.StoreID != f.StoreID {
			continue
		}
		if f.BrandID != "" && rec.BrandID != f.BrandID {
			continue
		}
		if f.CommandType != "" && rec.CommandType != f.CommandType {
			continue
		}
		if f.ActorID != "" && rec.ActorID != f.ActorID {
			continue
		}
		if f.Status != "" && string(rec.Status) != f.Status {
			continue
		}
		matched = append(matched, rec)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return []*entity.ExecutionRecord{}, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}

	out := make([]*entity.ExecutionRecord, 0, len(matched))
	for _, rec := range matched {
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

func cloneRecord(rec *entity.ExecutionRecord) *entity.ExecutionRecord {
	cp := *rec
	if rec.RollbackID != nil {
		id := *rec.RollbackID
		cp.RollbackID = &id
	}
	if rec.Amount != nil {
		a := *rec.Amount
		cp.Amount = &a
	}
	if rec.PayloadSnapshot != nil {
		cp.PayloadSnapshot = clonePayload(rec.PayloadSnapshot)
	}
	return &cp
}

func clonePayload(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = clonePayload(nested)
			continue
		}
		out[k] = v
	}
	return out
}

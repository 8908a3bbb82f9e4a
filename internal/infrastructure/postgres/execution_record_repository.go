package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/repository"
)

var _ repository.ExecutionRecordRepository = (*ExecutionRecordRepo)(nil)

// ExecutionRecordRepo ledger de auditoría sobre PostgreSQL (usable con pool o tx).
// Las transiciones de estado son UPDATEs condicionales: el compare-and-set
// ocurre en la base, nunca como read-then-write en la aplicación.
type ExecutionRecordRepo struct {
	q Querier
}

// NewExecutionRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExecutionRecordRepository(q Querier) *ExecutionRecordRepo {
	return &ExecutionRecordRepo{q: q}
}

const recordColumns = `
	execution_id, command_type, actor_id, actor_role, store_id, brand_id,
	status, level, amount, payload_snapshot, reason, executed_at, created_at,
	rollback_id, seal`

// Create persiste un registro nuevo. El PK garantiza que un execution_id
// jamás se reutiliza.
func (r *ExecutionRecordRepo) Create(ctx context.Context, rec *entity.ExecutionRecord) error {
	snapshot, err := json.Marshal(rec.PayloadSnapshot)
	if err != nil {
		return fmt.Errorf("serializar snapshot: %w", err)
	}
	query := `
		INSERT INTO execution_records
			(execution_id, command_type, actor_id, actor_role, store_id, brand_id,
			 status, level, amount, payload_snapshot, reason, executed_at, created_at, seal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		rec.ExecutionID, rec.CommandType, rec.ActorID, rec.ActorRole, rec.StoreID, rec.BrandID,
		string(rec.Status), string(rec.Level), rec.Amount, snapshot, rec.Reason,
		rec.ExecutedAt, rec.CreatedAt, rec.Seal,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewExecutionError(domain.CodeInternal, "execution_id repetido %s", rec.ExecutionID)
		}
		return fmt.Errorf("insert execution_record: %w", err)
	}
	return nil
}

// GetByID obtiene un registro; (nil, nil) si no existe.
func (r *ExecutionRecordRepo) GetByID(ctx context.Context, executionID string) (*entity.ExecutionRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM execution_records WHERE execution_id = $1`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, executionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get execution_record: %w", err)
	}
	return rec, nil
}

// MarkRollingBack transición exclusiva completed -> rolling_back. Cero filas
// afectadas significa que otro rollback ganó la carrera (o el estado no era
// completed): conflicto.
func (r *ExecutionRecordRepo) MarkRollingBack(ctx context.Context, executionID string) error {
	query := `
		UPDATE execution_records SET status = $2
		WHERE execution_id = $1 AND status = $3`
	tag, err := r.q.Exec(ctx, query, executionID,
		string(entity.StatusRollingBack), string(entity.StatusCompleted))
	if err != nil {
		return fmt.Errorf("mark rolling_back: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewExecutionError(domain.CodeRollbackConflict,
			"la ejecución %s no está en completed (otro rollback en curso?)", executionID)
	}
	return nil
}

// CompleteRollback rolling_back -> rolled_back; el predicado rollback_id IS
// NULL garantiza que se fija a lo sumo una vez.
func (r *ExecutionRecordRepo) CompleteRollback(ctx context.Context, executionID, rollbackID string) error {
	query := `
		UPDATE execution_records SET status = $2, rollback_id = $3
		WHERE execution_id = $1 AND status = $4 AND rollback_id IS NULL`
	tag, err := r.q.Exec(ctx, query, executionID,
		string(entity.StatusRolledBack), rollbackID, string(entity.StatusRollingBack))
	if err != nil {
		return fmt.Errorf("complete rollback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewExecutionError(domain.CodeRollbackConflict,
			"no se puede finalizar el rollback de %s", executionID)
	}
	return nil
}

// RevertRollingBack rolling_back -> completed tras un fallo de compensación.
func (r *ExecutionRecordRepo) RevertRollingBack(ctx context.Context, executionID string) error {
	query := `
		UPDATE execution_records SET status = $2
		WHERE execution_id = $1 AND status = $3`
	tag, err := r.q.Exec(ctx, query, executionID,
		string(entity.StatusCompleted), string(entity.StatusRollingBack))
	if err != nil {
		return fmt.Errorf("revert rolling_back: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewExecutionError(domain.CodeRollbackConflict,
			"la ejecución %s no está en rolling_back", executionID)
	}
	return nil
}

// Query lista registros con filtros opcionales, ordenados por created_at desc.
func (r *ExecutionRecordRepo) Query(ctx context.Context, f repository.AuditFilter) ([]*entity.ExecutionRecord, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.StoreID != "" {
		add("store_id = $%d", f.StoreID)
	}
	if f.BrandID != "" {
		add("brand_id = $%d", f.BrandID)
	}
	if f.CommandType != "" {
		add("command_type = $%d", f.CommandType)
	}
	if f.ActorID != "" {
		add("actor_id = $%d", f.ActorID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}

	query := `SELECT ` + recordColumns + ` FROM execution_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	args = append(args, f.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query execution_records: %w", err)
	}
	defer rows.Close()

	var out []*entity.ExecutionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan execution_record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterar execution_records: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*entity.ExecutionRecord, error) {
	var rec entity.ExecutionRecord
	var status, level string
	var snapshot []byte
	err := row.Scan(
		&rec.ExecutionID, &rec.CommandType, &rec.ActorID, &rec.ActorRole,
		&rec.StoreID, &rec.BrandID, &status, &level, &rec.Amount, &snapshot,
		&rec.Reason, &rec.ExecutedAt, &rec.CreatedAt, &rec.RollbackID, &rec.Seal,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = entity.ExecutionStatus(status)
	rec.Level = entity.ExecLevel(level)
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &rec.PayloadSnapshot); err != nil {
			return nil, fmt.Errorf("deserializar snapshot: %w", err)
		}
	}
	return &rec, nil
}

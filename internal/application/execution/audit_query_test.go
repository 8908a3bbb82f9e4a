package execution_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/audit"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/infrastructure/memory"
)

func seedRecord(t *testing.T, repo *memory.ExecutionRecordRepo, id, store, actorID, commandType string, createdAt time.Time) {
	t.Helper()
	rec := &entity.ExecutionRecord{
		ExecutionID:     id,
		CommandType:     commandType,
		ActorID:         actorID,
		ActorRole:       entity.RoleStoreManager,
		StoreID:         store,
		BrandID:         "brand-1",
		Status:          entity.StatusCompleted,
		Level:           entity.LevelAuto,
		PayloadSnapshot: map[string]any{"seed": id},
		ExecutedAt:      createdAt,
		CreatedAt:       createdAt,
	}
	seal, err := audit.Seal(rec)
	require.NoError(t, err)
	rec.Seal = seal
	require.NoError(t, repo.Create(context.Background(), rec))
}

func TestAuditQuery_FiltrosYOrden(t *testing.T) {
	repo := memory.NewExecutionRecordRepository()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	seedRecord(t, repo, "e1", "store-1", "u1", "shift_report", base)
	seedRecord(t, repo, "e2", "store-2", "u1", "order_cancel", base.Add(time.Minute))
	seedRecord(t, repo, "e3", "store-1", "u2", "shift_report", base.Add(2*time.Minute))

	uc := execution.NewAuditQueryUseCase(repo)

	// sin filtros: created_at desc
	recs, err := uc.Query(context.Background(), dto.AuditLogQuery{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "e3", recs[0].ExecutionID)
	assert.Equal(t, "e1", recs[2].ExecutionID)

	// por tienda
	recs, err = uc.Query(context.Background(), dto.AuditLogQuery{StoreID: "store-1"})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// por actor + comando
	recs, err = uc.Query(context.Background(), dto.AuditLogQuery{ActorID: "u1", CommandType: "shift_report"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "e1", recs[0].ExecutionID)

	// paginación
	recs, err = uc.Query(context.Background(), dto.AuditLogQuery{PageRequest: dto.PageRequest{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "e2", recs[0].ExecutionID)
}

func TestAuditQuery_FiltroPorStatus(t *testing.T) {
	repo := memory.NewExecutionRecordRepository()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	seedRecord(t, repo, "e1", "store-1", "u1", "shift_report", base)
	require.NoError(t, repo.MarkRollingBack(context.Background(), "e1"))
	require.NoError(t, repo.CompleteRollback(context.Background(), "e1", "rb1"))
	seedRecord(t, repo, "e2", "store-1", "u1", "shift_report", base.Add(time.Minute))

	uc := execution.NewAuditQueryUseCase(repo)
	recs, err := uc.Query(context.Background(), dto.AuditLogQuery{Status: string(entity.StatusRolledBack)})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "e1", recs[0].ExecutionID)
}

// TestVerifyIntegrity_ReportaSellosRotos un registro sembrado con sello de
// otro contenido aparece en la lista de tampered.
func TestVerifyIntegrity_ReportaSellosRotos(t *testing.T) {
	repo := memory.NewExecutionRecordRepository()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	seedRecord(t, repo, "e1", "store-1", "u1", "shift_report", base)

	// registro con sello inválido (simula reescritura en el storage)
	bad := &entity.ExecutionRecord{
		ExecutionID:     "e-tampered",
		CommandType:     "refund_issue",
		ActorID:         "u9",
		ActorRole:       entity.RoleStoreManager,
		StoreID:         "store-1",
		BrandID:         "brand-1",
		Status:          entity.StatusCompleted,
		Level:           entity.LevelAuto,
		PayloadSnapshot: map[string]any{"amount": 999},
		ExecutedAt:      base,
		CreatedAt:       base,
		Seal:            "sello-que-no-corresponde",
	}
	require.NoError(t, repo.Create(context.Background(), bad))

	uc := execution.NewAuditQueryUseCase(repo)
	resp, err := uc.VerifyIntegrity(context.Background(), dto.AuditLogQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Checked)
	assert.Equal(t, []string{"e-tampered"}, resp.Tampered)
}

package audit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/audit"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

func sealedRecord(t *testing.T) *entity.ExecutionRecord {
	t.Helper()
	amount := decimal.NewFromInt(120)
	rec := &entity.ExecutionRecord{
		ExecutionID: "11111111-1111-1111-1111-111111111111",
		CommandType: "discount_apply",
		ActorID:     "u-42",
		ActorRole:   entity.RoleStoreManager,
		StoreID:     "store-9",
		BrandID:     "brand-1",
		Status:      entity.StatusCompleted,
		Level:       entity.LevelAuto,
		Amount:      &amount,
		PayloadSnapshot: map[string]any{
			"amount":   120,
			"order_id": "ord-77",
		},
		ExecutedAt: time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		CreatedAt:  time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	seal, err := audit.Seal(rec)
	require.NoError(t, err)
	rec.Seal = seal
	return rec
}

func TestSeal_Determinista(t *testing.T) {
	rec := sealedRecord(t)
	again, err := audit.Seal(rec)
	require.NoError(t, err)
	assert.Equal(t, rec.Seal, again, "el mismo registro siempre produce el mismo sello")
	assert.Len(t, rec.Seal, 64, "SHA3-256 en hex: 64 caracteres")
}

func TestVerify_RegistroIntacto(t *testing.T) {
	rec := sealedRecord(t)
	ok, err := audit.Verify(rec)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestVerify_DetectaReescrituras cualquier mutación de un campo inmutable
// (snapshot, executed_at, monto, actor) rompe el sello.
func TestVerify_DetectaReescrituras(t *testing.T) {
	t.Run("payload_snapshot", func(t *testing.T) {
		rec := sealedRecord(t)
		rec.PayloadSnapshot["amount"] = 9999
		ok, err := audit.Verify(rec)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("executed_at", func(t *testing.T) {
		rec := sealedRecord(t)
		rec.ExecutedAt = rec.ExecutedAt.Add(time.Hour)
		ok, err := audit.Verify(rec)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("amount", func(t *testing.T) {
		rec := sealedRecord(t)
		nuevo := decimal.NewFromInt(1)
		rec.Amount = &nuevo
		ok, err := audit.Verify(rec)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("actor", func(t *testing.T) {
		rec := sealedRecord(t)
		rec.ActorID = "otro"
		ok, err := audit.Verify(rec)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// TestVerify_SobreviveRoundTripDeStorage el backend Postgres devuelve el
// monto reescalado por NUMERIC(18,4) (999 -> 999.0000) y los timestamps con
// precisión de microsegundos (timestamptz). Representaciones distintas del
// mismo valor deben producir el mismo sello: un registro intacto leído de la
// base no puede reportarse como adulterado.
func TestVerify_SobreviveRoundTripDeStorage(t *testing.T) {
	amount := decimal.NewFromFloat(999)
	executedAt := time.Date(2026, 3, 14, 10, 30, 0, 123456789, time.UTC)
	rec := &entity.ExecutionRecord{
		ExecutionID: "33333333-3333-3333-3333-333333333333",
		CommandType: "refund_issue",
		ActorID:     "u-42",
		ActorRole:   entity.RoleStoreManager,
		StoreID:     "store-9",
		BrandID:     "brand-1",
		Status:      entity.StatusCompleted,
		Level:       entity.LevelNotify,
		Amount:      &amount,
		PayloadSnapshot: map[string]any{
			"amount":   999,
			"order_id": "ord-77",
		},
		ExecutedAt: executedAt.Truncate(time.Microsecond),
		CreatedAt:  executedAt.Truncate(time.Microsecond),
	}
	seal, err := audit.Seal(rec)
	require.NoError(t, err)
	rec.Seal = seal

	// lo que volvería del SELECT: mismo valor, otra representación
	rescaled := decimal.RequireFromString("999.0000")
	rec.Amount = &rescaled
	rec.ExecutedAt = rec.ExecutedAt.Truncate(time.Microsecond)
	rec.CreatedAt = rec.CreatedAt.Truncate(time.Microsecond)

	ok, err := audit.Verify(rec)
	require.NoError(t, err)
	assert.True(t, ok, "un registro intacto leído de Postgres no debe reportarse como adulterado")
}

// TestVerify_IgnoraCamposMutables status y rollback_id cambian legalmente con
// el rollback; el sello no debe romperse por eso.
func TestVerify_IgnoraCamposMutables(t *testing.T) {
	rec := sealedRecord(t)
	rbID := "22222222-2222-2222-2222-222222222222"
	rec.Status = entity.StatusRolledBack
	rec.RollbackID = &rbID

	ok, err := audit.Verify(rec)
	require.NoError(t, err)
	assert.True(t, ok)
}

package governance_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/governance"
)

// ──────────────────────────────────────────────────────────────────────────────
// CommandRegistry: catálogo inmutable construido al arranque.
// ──────────────────────────────────────────────────────────────────────────────

func TestNewCommandRegistry_CatalogoPorDefecto(t *testing.T) {
	reg, err := governance.NewCommandRegistry(governance.DefaultCatalog())
	require.NoError(t, err)

	def, err := reg.Get("discount_apply")
	require.NoError(t, err)
	assert.Equal(t, entity.LevelApprove, def.Level)
	require.NotNil(t, def.AmountCircuitBreaker)
	assert.True(t, def.AmountCircuitBreaker.Equal(decimal.NewFromInt(500)))
}

func TestCommandRegistry_ComandoDesconocido(t *testing.T) {
	reg, err := governance.NewCommandRegistry(governance.DefaultCatalog())
	require.NoError(t, err)

	_, err = reg.Get("does_not_exist")
	require.Error(t, err)

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, domain.CodeUnknownCommand, execErr.Code)
}

func TestNewCommandRegistry_RechazaDuplicados(t *testing.T) {
	defs := []entity.CommandDefinition{
		{CommandType: "discount_apply", Level: entity.LevelAuto},
		{CommandType: "discount_apply", Level: entity.LevelApprove},
	}
	_, err := governance.NewCommandRegistry(defs)
	assert.Error(t, err, "dos definiciones con el mismo command_type deben rechazarse")
}

func TestNewCommandRegistry_RechazaNivelDesconocido(t *testing.T) {
	defs := []entity.CommandDefinition{{CommandType: "x", Level: "MAYBE"}}
	_, err := governance.NewCommandRegistry(defs)
	assert.Error(t, err)
}

func TestNewCommandRegistry_RechazaBreakerNoPositivo(t *testing.T) {
	zero := decimal.Zero
	defs := []entity.CommandDefinition{
		{CommandType: "x", Level: entity.LevelAuto, AmountCircuitBreaker: &zero},
	}
	_, err := governance.NewCommandRegistry(defs)
	assert.Error(t, err)
}

// TestCommandRegistry_GetDevuelveCopia verifica que mutar el resultado de Get
// no altera el catálogo: el registro es configuración, no estado.
func TestCommandRegistry_GetDevuelveCopia(t *testing.T) {
	reg, err := governance.NewCommandRegistry(governance.DefaultCatalog())
	require.NoError(t, err)

	def, err := reg.Get("shift_report")
	require.NoError(t, err)
	def.Level = entity.LevelApprove

	again, err := reg.Get("shift_report")
	require.NoError(t, err)
	assert.Equal(t, entity.LevelAuto, again.Level)
}

package governance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// RollbackWindow ventana fija de reversión tras executed_at. Es un control de
// riesgo data-driven, uniforme para todos los roles.
const RollbackWindow = 30 * time.Minute

// Comandos del catálogo por defecto.
const (
	CommandDiscountApply     = "discount_apply"
	CommandRefundIssue       = "refund_issue"
	CommandOrderCancel       = "order_cancel"
	CommandShiftReport       = "shift_report"
	CommandScheduleOverride  = "schedule_override"
	CommandInventoryAdjust   = "inventory_adjust"
	CommandPriceUpdate       = "price_update"
	CommandSystemMaintenance = "system_maintenance"
)

func breaker(units int64) *decimal.Decimal {
	d := decimal.NewFromInt(units)
	return &d
}

// DefaultCatalog catálogo de comandos sensibles de la operación de
// restaurantes. Umbrales en unidades de moneda.
func DefaultCatalog() []entity.CommandDefinition {
	return []entity.CommandDefinition{
		{
			CommandType:          CommandDiscountApply,
			Level:                entity.LevelApprove,
			AllowedRoles:         []string{entity.RoleStoreManager, entity.RoleBrandManager},
			AmountCircuitBreaker: breaker(500),
		},
		{
			CommandType:          CommandRefundIssue,
			Level:                entity.LevelApprove,
			AllowedRoles:         []string{entity.RoleStoreManager, entity.RoleBrandManager},
			AmountCircuitBreaker: breaker(200),
		},
		{
			CommandType:  CommandOrderCancel,
			Level:        entity.LevelNotify,
			AllowedRoles: []string{entity.RoleWaiter, entity.RoleCashier, entity.RoleStoreManager, entity.RoleBrandManager},
		},
		{
			CommandType:  CommandShiftReport,
			Level:        entity.LevelAuto,
			AllowedRoles: []string{entity.RoleStoreManager, entity.RoleBrandManager},
		},
		{
			CommandType:  CommandScheduleOverride,
			Level:        entity.LevelNotify,
			AllowedRoles: []string{entity.RoleStoreManager, entity.RoleBrandManager},
		},
		{
			CommandType:          CommandInventoryAdjust,
			Level:                entity.LevelNotify,
			AllowedRoles:         []string{entity.RoleStoreManager, entity.RoleBrandManager},
			AmountCircuitBreaker: breaker(1000),
		},
		{
			CommandType:  CommandPriceUpdate,
			Level:        entity.LevelApprove,
			AllowedRoles: []string{entity.RoleBrandManager},
		},
		{
			// comandos de sistema: solo super_admin (allowed_roles vacío)
			CommandType: CommandSystemMaintenance,
			Level:       entity.LevelApprove,
		},
	}
}

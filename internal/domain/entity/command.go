package entity

import "github.com/shopspring/decimal"

// ExecLevel nivel de riesgo de un comando.
type ExecLevel string

const (
	LevelAuto    ExecLevel = "AUTO"    // ejecuta de inmediato
	LevelNotify  ExecLevel = "NOTIFY"  // ejecuta de inmediato y publica evento de visibilidad
	LevelApprove ExecLevel = "APPROVE" // no ejecuta sin aprobación humana
)

// Roles conocidos de la plataforma de operaciones.
const (
	RoleWaiter       = "waiter"
	RoleCashier      = "cashier"
	RoleStoreManager = "store_manager"
	RoleBrandManager = "brand_manager"
	RoleSuperAdmin   = "super_admin" // omite allowed_roles; no omite breaker ni ventana
)

// CommandDefinition definición inmutable de un comando sensible.
// Se construye una vez al arranque; nunca se muta en runtime.
type CommandDefinition struct {
	CommandType          string
	Level                ExecLevel
	AllowedRoles         []string         // vacío = solo super_admin
	AmountCircuitBreaker *decimal.Decimal // umbral monetario opcional; nil = sin breaker
}

// RoleAllowed indica si el rol aparece en AllowedRoles (sin considerar super_admin).
func (d *CommandDefinition) RoleAllowed(role string) bool {
	for _, r := range d.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor identidad autenticada que invoca un comando. La inyecta la capa de
// autenticación; el core solo autoriza, nunca autentica, y no la persiste.
type Actor struct {
	UserID  string
	Role    string
	StoreID string
	BrandID string
}

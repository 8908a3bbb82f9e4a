package governance

import (
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// PermissionResolver decide si un actor puede invocar un comando.
// super_admin omite la verificación de allowed_roles, pero NO el circuit
// breaker ni la ventana de rollback: esos son controles de riesgo, no de
// identidad.
type PermissionResolver struct{}

// NewPermissionResolver construye el resolver (sin estado).
func NewPermissionResolver() *PermissionResolver { return &PermissionResolver{} }

// Check devuelve nil si el actor está habilitado; PermissionDeniedError si no.
func (p *PermissionResolver) Check(actor entity.Actor, def *entity.CommandDefinition) error {
	if actor.Role == entity.RoleSuperAdmin {
		return nil
	}
	if def.RoleAllowed(actor.Role) {
		return nil
	}
	return &domain.PermissionDeniedError{Role: actor.Role, CommandType: def.CommandType}
}

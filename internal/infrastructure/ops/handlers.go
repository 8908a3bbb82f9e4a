// Package ops provee los handlers operativos de cada comando del catálogo.
// Son adaptadores delgados: validan el payload mínimo, registran el efecto y
// declaran su compensación. Los sistemas POS/inventario/nómina reales se
// conectan detrás de estas mismas firmas.
package ops

import (
	"context"
	"fmt"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/governance"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/logger"
)

// opsHandler implementación base: loguea el efecto y la compensación con el
// nombre del comando. Cada campo requerido ausente es un error del handler y
// el core no escribe registro.
type opsHandler struct {
	command  string
	required []string // claves que el payload debe traer
	log      *logger.Logger
}

var _ execution.CommandHandler = (*opsHandler)(nil)

func (h *opsHandler) Execute(_ context.Context, payload map[string]any, actor entity.Actor) error {
	for _, k := range h.required {
		if _, ok := payload[k]; !ok {
			return fmt.Errorf("ops: comando %s requiere el campo %q", h.command, k)
		}
	}
	h.log.Info().
		Str("command", h.command).
		Str("actor_id", actor.UserID).
		Str("store_id", actor.StoreID).
		Msg("efecto aplicado")
	return nil
}

func (h *opsHandler) Compensate(_ context.Context, payload map[string]any, actor entity.Actor) error {
	h.log.Info().
		Str("command", h.command).
		Str("actor_id", actor.UserID).
		Interface("snapshot", payload).
		Msg("efecto revertido")
	return nil
}

// RegisterCatalogHandlers arma la tabla de handlers para el catálogo por
// defecto. El chequeo de cobertura posterior (EnsureCovers) garantiza que esta
// lista y el catálogo no se desincronizan en silencio.
func RegisterCatalogHandlers(reg *execution.HandlerRegistry, log *logger.Logger) error {
	required := map[string][]string{
		governance.CommandDiscountApply:     {"order_id", "amount"},
		governance.CommandRefundIssue:       {"order_id", "amount"},
		governance.CommandOrderCancel:       {"order_id"},
		governance.CommandShiftReport:       {},
		governance.CommandScheduleOverride:  {"shift_id", "employee_id"},
		governance.CommandInventoryAdjust:   {"sku", "delta"},
		governance.CommandPriceUpdate:       {"sku", "amount"},
		governance.CommandSystemMaintenance: {"task"},
	}
	for command, fields := range required {
		if err := reg.Register(command, &opsHandler{command: command, required: fields, log: log}); err != nil {
			return err
		}
	}
	return nil
}

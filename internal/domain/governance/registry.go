// Package governance contiene el núcleo síncrono y sin I/O de la capa de
// ejecución confiable: catálogo de comandos, resolución de permisos y
// clasificación de riesgo. Todo es inmutable después del arranque y no
// requiere locks.
package governance

import (
	"fmt"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// CommandRegistry catálogo inmutable command_type -> CommandDefinition.
// Se construye explícitamente en el arranque y se inyecta en el ejecutor;
// no expone mutación en runtime: es configuración, no estado.
type CommandRegistry struct {
	defs map[string]entity.CommandDefinition
}

// NewCommandRegistry construye el registro. Rechaza tipos duplicados,
// niveles desconocidos y umbrales de breaker no positivos.
func NewCommandRegistry(defs []entity.CommandDefinition) (*CommandRegistry, error) {
	m := make(map[string]entity.CommandDefinition, len(defs))
	for _, d := range defs {
		if d.CommandType == "" {
			return nil, fmt.Errorf("governance: definición sin command_type")
		}
		if _, dup := m[d.CommandType]; dup {
			return nil, fmt.Errorf("governance: command_type duplicado %q", d.CommandType)
		}
		switch d.Level {
		case entity.LevelAuto, entity.LevelNotify, entity.LevelApprove:
		default:
			return nil, fmt.Errorf("governance: nivel desconocido %q en %q", d.Level, d.CommandType)
		}
		if d.AmountCircuitBreaker != nil && !d.AmountCircuitBreaker.IsPositive() {
			return nil, fmt.Errorf("governance: breaker no positivo en %q", d.CommandType)
		}
		m[d.CommandType] = d
	}
	return &CommandRegistry{defs: m}, nil
}

// Get resuelve la definición de un comando.
// Tipo desconocido -> ExecutionError{UNKNOWN_COMMAND}.
func (r *CommandRegistry) Get(commandType string) (*entity.CommandDefinition, error) {
	d, ok := r.defs[commandType]
	if !ok {
		return nil, domain.NewExecutionError(domain.CodeUnknownCommand, "comando desconocido: %q", commandType)
	}
	// copia: el mapa interno nunca se expone
	return &d, nil
}

// CommandTypes devuelve los tipos registrados (para validar cobertura de handlers).
func (r *CommandRegistry) CommandTypes() []string {
	out := make([]string, 0, len(r.defs))
	for t := range r.defs {
		out = append(out, t)
	}
	return out
}

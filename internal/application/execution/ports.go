package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/governance"
)

// CommandHandler puerto hacia los módulos de negocio. El core no sabe cómo un
// comando muta el estado del negocio; solo despacha y exige una acción
// compensatoria para el rollback.
type CommandHandler interface {
	// Execute aplica el efecto del comando. Si retorna error, el core no
	// escribe ningún registro de auditoría.
	Execute(ctx context.Context, payload map[string]any, actor entity.Actor) error
	// Compensate revierte el efecto de una ejecución previa a partir del
	// snapshot original.
	Compensate(ctx context.Context, payload map[string]any, actor entity.Actor) error
}

// HandlerRegistry tabla de handlers construida y validada al arranque.
// Después de EnsureCovers, una búsqueda solo puede fallar para comandos
// genuinamente desconocidos, que el CommandRegistry ya rechazó antes.
type HandlerRegistry struct {
	handlers map[string]CommandHandler
}

// NewHandlerRegistry construye la tabla vacía.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]CommandHandler)}
}

// Register asocia un handler a un command_type. Rechaza duplicados.
func (r *HandlerRegistry) Register(commandType string, h CommandHandler) error {
	if h == nil {
		return fmt.Errorf("execution: handler nil para %q", commandType)
	}
	if _, dup := r.handlers[commandType]; dup {
		return fmt.Errorf("execution: handler duplicado para %q", commandType)
	}
	r.handlers[commandType] = h
	return nil
}

// Get devuelve el handler del comando, o nil si no hay.
func (r *HandlerRegistry) Get(commandType string) CommandHandler {
	return r.handlers[commandType]
}

// EnsureCovers verifica en el arranque que cada comando del catálogo tiene
// handler; main se niega a arrancar si falta alguno.
func (r *HandlerRegistry) EnsureCovers(reg *governance.CommandRegistry) error {
	for _, t := range reg.CommandTypes() {
		if _, ok := r.handlers[t]; !ok {
			return fmt.Errorf("execution: falta handler para el comando %q", t)
		}
	}
	return nil
}

// Tipos de evento publicados hacia fuera del core.
const (
	EventExecutionCompleted  = "execution.completed"
	EventExecutionRolledBack = "execution.rolled_back"
)

// NotifyEvent evento de visibilidad para ejecuciones NOTIFY y rollbacks.
type NotifyEvent struct {
	EventType      string           `json:"event_type"`
	ExecutionID    string           `json:"execution_id"`
	CommandType    string           `json:"command_type"`
	ActorID        string           `json:"actor_id"`
	ActorRole      string           `json:"actor_role"`
	StoreID        string           `json:"store_id"`
	BrandID        string           `json:"brand_id"`
	Level          string           `json:"level"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	BreakerTripped bool             `json:"breaker_tripped"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// Notifier puerto de publicación de eventos. Un fallo de entrega nunca hace
// fallar la ejecución: se registra en el log y se sigue.
type Notifier interface {
	Notify(ctx context.Context, event NotifyEvent) error
}

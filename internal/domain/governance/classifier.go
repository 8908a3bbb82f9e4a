package governance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// Classification resultado de clasificar una invocación concreta.
type Classification struct {
	Level          entity.ExecLevel
	BreakerTripped bool
	Reason         string // motivo del escalamiento; vacío si no hubo
}

// RiskClassifier calcula el nivel efectivo de una invocación: nivel base de
// la definición más el escalamiento del circuit breaker monetario.
type RiskClassifier struct{}

// NewRiskClassifier construye el clasificador (sin estado).
func NewRiskClassifier() *RiskClassifier { return &RiskClassifier{} }

// Classify aplica el circuit breaker. Si amount > umbral, la invocación queda
// marcada como breaker-tripped y el motivo lo menciona siempre, incluso cuando
// el nivel base ya era APPROVE y el resultado no cambia: el operador debe ver
// que el breaker también disparó. AUTO y NOTIFY escalan a APPROVE.
func (c *RiskClassifier) Classify(def *entity.CommandDefinition, amount *decimal.Decimal) Classification {
	out := Classification{Level: def.Level}

	if def.Level == entity.LevelApprove {
		out.Reason = fmt.Sprintf("el comando %q requiere aprobación por nivel base APPROVE", def.CommandType)
	}

	if def.AmountCircuitBreaker == nil || amount == nil {
		return out
	}
	if amount.GreaterThan(*def.AmountCircuitBreaker) {
		out.BreakerTripped = true
		breakerMsg := fmt.Sprintf("circuit breaker disparado: monto %s supera el umbral %s",
			amount.String(), def.AmountCircuitBreaker.String())
		if out.Reason != "" {
			out.Reason += "; " + breakerMsg
		} else {
			out.Reason = breakerMsg
		}
		out.Level = entity.LevelApprove
	}
	return out
}

package execution

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
)

// claves cuyo valor jamás debe llegar al snapshot de auditoría
var redactedKeys = []string{
	"password", "token", "secret", "api_key", "card_number", "cvv", "authorization",
}

// amountFromPayload extrae payload["amount"] como decimal. Acepta los tipos
// con que llega desde JSON (float64, json.Number, string, int). Devuelve nil
// si el payload no trae monto.
func amountFromPayload(payload map[string]any) (*decimal.Decimal, error) {
	raw, ok := payload["amount"]
	if !ok || raw == nil {
		return nil, nil
	}
	var d decimal.Decimal
	var err error
	switch v := raw.(type) {
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		d, err = decimal.NewFromString(v)
	case decimal.Decimal:
		d = v
	default:
		return nil, domain.NewExecutionError(domain.CodeInvalidPayload, "amount con tipo no soportado %T", raw)
	}
	if err != nil {
		return nil, domain.WrapExecutionError(domain.CodeInvalidPayload, err, "amount inválido")
	}
	return &d, nil
}

// redactPayload copia el payload reemplazando valores sensibles. La copia es
// superficial salvo por los valores redactados; el snapshot nunca comparte el
// map del request.
func redactPayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if isSensitiveKey(k) {
			out[k] = "[REDACTED]"
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = redactPayload(nested)
			continue
		}
		out[k] = v
	}
	return out
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range redactedKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

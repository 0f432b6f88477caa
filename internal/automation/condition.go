// Package automation evaluates automation rules against a domain event and
// dispatches their actions. Conditions only ever see the event payload.
package automation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/anu-devcode/deploy-test-sub001/internal/models"
)

// Matches reports whether every bound of cond holds for payload. A bound on
// a field the payload does not carry never matches.
func Matches(cond models.RuleCondition, payload map[string]any) bool {
	if cond.MinAmount != nil || cond.MaxAmount != nil {
		amount, ok := payloadDecimal(payload, models.PayloadAmount)
		if !ok {
			return false
		}
		if cond.MinAmount != nil && amount.LessThan(*cond.MinAmount) {
			return false
		}
		if cond.MaxAmount != nil && amount.GreaterThan(*cond.MaxAmount) {
			return false
		}
	}

	if cond.MinStock != nil || cond.MaxStock != nil {
		stock, ok := payloadInt(payload, models.PayloadStock)
		if !ok {
			return false
		}
		if cond.MinStock != nil && stock < *cond.MinStock {
			return false
		}
		if cond.MaxStock != nil && stock > *cond.MaxStock {
			return false
		}
	}
	return true
}

// ValidateCondition rejects inverted bounds.
func ValidateCondition(cond models.RuleCondition) error {
	if cond.MinAmount != nil && cond.MaxAmount != nil && cond.MinAmount.GreaterThan(*cond.MaxAmount) {
		return fmt.Errorf("min_amount %s is greater than max_amount %s", cond.MinAmount, cond.MaxAmount)
	}
	if cond.MinStock != nil && cond.MaxStock != nil && *cond.MinStock > *cond.MaxStock {
		return fmt.Errorf("min_stock %d is greater than max_stock %d", *cond.MinStock, *cond.MaxStock)
	}
	return nil
}

func payloadDecimal(payload map[string]any, key string) (decimal.Decimal, bool) {
	switch v := payload[key].(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	}
	return decimal.Zero, false
}

func payloadInt(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

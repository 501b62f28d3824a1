// Package schedule computes installment amounts for payment plans.
package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/Knetic/govaluate"
)

// Params are the variables a formula may reference.
type Params struct {
	Total     int64
	Paid      int64
	Remaining int64
	Count     int
	Index     int
}

func (p Params) values() map[string]interface{} {
	return map[string]interface{}{
		"total":     float64(p.Total),
		"paid":      float64(p.Paid),
		"remaining": float64(p.Remaining),
		"count":     float64(p.Count),
		"index":     float64(p.Index),
	}
}

// Evaluate computes a formula such as "remaining / count" and rounds the
// result to the nearest whole currency unit.
func Evaluate(formula string, params Params) (int64, error) {
	expr, err := govaluate.NewEvaluableExpression(formula)
	if err != nil {
		return 0, fmt.Errorf("parse formula %q: %w", formula, err)
	}
	result, err := expr.Evaluate(params.values())
	if err != nil {
		return 0, fmt.Errorf("evaluate formula %q: %w", formula, err)
	}
	amount, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("formula %q does not produce a number", formula)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("formula %q produced %v", formula, amount)
	}
	return int64(math.Round(amount)), nil
}

// Even splits amount into count parts; the remainder goes to the last part.
func Even(amount int64, count int) []int64 {
	if count <= 0 {
		return nil
	}
	parts := make([]int64, count)
	base := amount / int64(count)
	for i := range parts {
		parts[i] = base
	}
	parts[count-1] += amount - base*int64(count)
	return parts
}

// Monthly returns count due dates one month apart starting at first.
func Monthly(first time.Time, count int) []time.Time {
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, first.AddDate(0, i, 0))
	}
	return dates
}

package tui

import (
	"strings"

	"github.com/shopspring/decimal"
)

type bar struct {
	Label string
	Value decimal.Decimal
}

// barChart draws one horizontal bar per row, scaled to the largest value.
type barChart struct {
	Rows []bar
}

func (c barChart) Render(width int) []string {
	if width <= 0 || len(c.Rows) == 0 {
		return nil
	}
	maxV := decimal.Zero
	for _, r := range c.Rows {
		if r.Value.GreaterThan(maxV) {
			maxV = r.Value
		}
	}
	lines := make([]string, 0, len(c.Rows))
	for _, r := range c.Rows {
		n := 0
		if maxV.IsPositive() && r.Value.IsPositive() {
			n = int(r.Value.Div(maxV).Mul(decimal.NewFromInt(int64(width))).IntPart())
			n = max(n, 1)
		}
		lines = append(lines, strings.Repeat("█", n)+strings.Repeat("·", width-n))
	}
	return lines
}

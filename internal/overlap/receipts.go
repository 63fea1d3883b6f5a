package overlap

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ReceiptTable maps committee name to total receipts.
type ReceiptTable map[string]decimal.Decimal

// Aggregate collects the receipts of every committee referenced by the
// report. Committees without a total count as zero; when a name repeats,
// the last record wins.
func Aggregate(entities []Entity, report OverlapReport) (ReceiptTable, error) {
	lookup := make(map[string]decimal.Decimal, len(entities))
	for _, e := range entities {
		lookup[e.Name] = e.Receipts()
	}

	out := make(ReceiptTable)
	for _, n := range report.Lengths() {
		for _, f := range report[n] {
			for _, name := range f.Names {
				total, ok := lookup[name]
				if !ok {
					return nil, fmt.Errorf("%w: %q under fragment %q", ErrInconsistentIndex, name, f.Text)
				}
				out[name] = total
			}
		}
	}
	return out, nil
}

// Total sums every receipt in the table.
func (t ReceiptTable) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range t {
		sum = sum.Add(v)
	}
	return sum
}

// MarshalJSON writes totals as JSON numbers rather than quoted strings.
func (t ReceiptTable) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.Number, len(t))
	for name, v := range t {
		out[name] = json.Number(v.String())
	}
	return json.Marshal(out)
}

func (t *ReceiptTable) UnmarshalJSON(data []byte) error {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = raw
	return nil
}

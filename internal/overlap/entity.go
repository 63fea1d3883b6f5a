package overlap

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Entity is one committee record as retrieved upstream.
type Entity struct {
	Name          string           `json:"name" validate:"required"`
	TotalReceipts *decimal.Decimal `json:"total_receipts,omitempty"`

	// Raw is the full upstream record, kept so snapshots can be written back verbatim.
	Raw json.RawMessage `json:"-"`
}

// Receipts returns the total receipts, zero when the record carries none.
func (e Entity) Receipts() decimal.Decimal {
	if e.TotalReceipts == nil {
		return decimal.Zero
	}
	return *e.TotalReceipts
}

// MarshalJSON emits Raw when present so cached records round-trip untouched.
func (e Entity) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	w := struct {
		Name          string       `json:"name"`
		TotalReceipts *json.Number `json:"total_receipts,omitempty"`
	}{Name: e.Name}
	if e.TotalReceipts != nil {
		n := json.Number(e.TotalReceipts.String())
		w.TotalReceipts = &n
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the known fields and keeps the whole record in Raw.
func (e *Entity) UnmarshalJSON(data []byte) error {
	type plain Entity
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entity(p)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

var validate = validator.New()

// Validate checks every entity and fails on the first malformed record.
func Validate(entities []Entity) error {
	for i := range entities {
		if err := validate.Struct(&entities[i]); err != nil {
			return &ValidationError{Index: i, Err: err}
		}
	}
	return nil
}

// ValidationError reports the position of a malformed entity.
type ValidationError struct {
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entity %d: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrInvalidEntity, e.Err} }

package food

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Amount is an optional nutrient quantity. The zero value is absent.
type Amount struct {
	value   float64
	present bool
}

// Some returns a present amount
func Some(v float64) Amount {
	return Amount{value: v, present: true}
}

// None returns an absent amount
func None() Amount {
	return Amount{}
}

// FromPtr converts a nullable float into an Amount
func FromPtr(v *float64) Amount {
	if v == nil {
		return None()
	}
	return Some(*v)
}

// Value returns the quantity and whether it is present
func (a Amount) Value() (float64, bool) {
	return a.value, a.present
}

// Present reports whether the amount is known
func (a Amount) Present() bool {
	return a.present
}

// OrZero returns the quantity, or 0 when absent. Only sums should use this.
func (a Amount) OrZero() float64 {
	if !a.present {
		return 0
	}
	return a.value
}

// Ptr returns a pointer to the quantity, nil when absent
func (a Amount) Ptr() *float64 {
	if !a.present {
		return nil
	}
	v := a.value
	return &v
}

// Mul scales a present amount by factor; absent stays absent
func (a Amount) Mul(factor float64) Amount {
	if !a.present {
		return a
	}
	return Some(a.value * factor)
}

// LessOrEqual is false whenever either side is absent
func (a Amount) LessOrEqual(b Amount) bool {
	return a.present && b.present && a.value <= b.value
}

// GreaterOrEqual is false whenever either side is absent
func (a Amount) GreaterOrEqual(b Amount) bool {
	return a.present && b.present && a.value >= b.value
}

func (a Amount) String() string {
	if !a.present {
		return "n/a"
	}
	return strconv.FormatFloat(a.value, 'f', -1, 64)
}

// MarshalJSON encodes absent amounts as null
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.present {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON decodes null into an absent amount
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Some(v)
	return nil
}

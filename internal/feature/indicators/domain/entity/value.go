package entity

// Value is one indicator reading.
// Valid is false when the trailing window is incomplete or the formula hits
// a zero denominator; Float is then meaningless and must not be displayed.
type Value struct {
	Float float64
	Valid bool
}

// Defined wraps a computed reading.
func Defined(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Undefined is the "no value" marker.
func Undefined() Value {
	return Value{}
}

// Ptr returns nil for an undefined reading, which JSON encodes as null.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float
	return &f
}

package types

// BoolValue is the type of boolean values.
type BoolValue bool

const (
	FalseValue BoolValue = false
	TrueValue  BoolValue = true
)

var _ Value = TrueValue

func (b BoolValue) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (BoolValue) Kind() Kind { return Boolean }

package enums

import "fmt"

// OperationType is the direction of a stock movement.
type OperationType string

const (
	OperationTypeInward  OperationType = "inward"
	OperationTypeOutward OperationType = "outward"
)

var validOperationTypes = []OperationType{
	OperationTypeInward,
	OperationTypeOutward,
}

// String implements fmt.Stringer.
func (o OperationType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OperationType.
func (o OperationType) IsValid() bool {
	for _, candidate := range validOperationTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOperationType converts raw input into an OperationType.
func ParseOperationType(value string) (OperationType, error) {
	for _, candidate := range validOperationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation type %q", value)
}

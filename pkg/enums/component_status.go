package enums

import "fmt"

// ComponentStatus maps to the component_status enum in Postgres.
type ComponentStatus string

const (
	ComponentStatusActive       ComponentStatus = "Active"
	ComponentStatusDiscontinued ComponentStatus = "Discontinued"
	ComponentStatusObsolete     ComponentStatus = "Obsolete"
)

var validComponentStatuses = []ComponentStatus{
	ComponentStatusActive,
	ComponentStatusDiscontinued,
	ComponentStatusObsolete,
}

// IsValid checks whether the given status matches the canonical enum.
func (s ComponentStatus) IsValid() bool {
	for _, candidate := range validComponentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseComponentStatus converts raw strings into ComponentStatus.
func ParseComponentStatus(value string) (ComponentStatus, error) {
	for _, candidate := range validComponentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid component status %q", value)
}

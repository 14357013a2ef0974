package enums

import "fmt"

// Role is the access level an authenticated user carries. The core trusts
// the role string supplied by the auth layer verbatim.
type Role string

const (
	RoleAdmin                 Role = "Admin"
	RoleLabTechnician         Role = "Lab Technician"
	RoleManufacturingEngineer Role = "Manufacturing Engineer"
	RoleResearcher            Role = "Researcher"
	RoleUser                  Role = "User"
)

var validRoles = []Role{
	RoleAdmin,
	RoleLabTechnician,
	RoleManufacturingEngineer,
	RoleResearcher,
	RoleUser,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// CanManageComponents reports whether the role may create, edit, or import
// component records.
func (r Role) CanManageComponents() bool {
	return r == RoleAdmin || r == RoleLabTechnician
}

// CanInward reports whether the role may perform inward stock movements.
func (r Role) CanInward() bool {
	return r == RoleAdmin || r == RoleLabTechnician
}

// CanOutward reports whether the role may perform outward stock movements.
func (r Role) CanOutward() bool {
	switch r {
	case RoleAdmin, RoleLabTechnician, RoleManufacturingEngineer, RoleResearcher:
		return true
	}
	return false
}

// CanViewReports reports whether the role may read the aggregated
// dashboard reports.
func (r Role) CanViewReports() bool {
	switch r {
	case RoleAdmin, RoleLabTechnician, RoleManufacturingEngineer:
		return true
	}
	return false
}

// IsPrivileged reports whether the role bypasses the large-outward approver
// requirement.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin
}

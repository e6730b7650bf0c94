package enums

import "fmt"

// StudentStatus describes the allowed values for the students.status column.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

var validStudentStatuses = []StudentStatus{
	StudentStatusActive,
	StudentStatusInactive,
}

// String implements fmt.Stringer.
func (s StudentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical student status enum.
func (s StudentStatus) IsValid() bool {
	for _, candidate := range validStudentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStudentStatus converts raw input into StudentStatus.
func ParseStudentStatus(value string) (StudentStatus, error) {
	for _, candidate := range validStudentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid student status %q", value)
}

package enums

import "fmt"

// InspectionStatus records the outcome of the lot inspection.
type InspectionStatus string

const (
	InspectionStatusPending InspectionStatus = "pending"
	InspectionStatusPassed  InspectionStatus = "passed"
	InspectionStatusFailed  InspectionStatus = "failed"
)

var validInspectionStatuses = []InspectionStatus{
	InspectionStatusPending,
	InspectionStatusPassed,
	InspectionStatusFailed,
}

// String implements fmt.Stringer.
func (i InspectionStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InspectionStatus.
func (i InspectionStatus) IsValid() bool {
	for _, candidate := range validInspectionStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInspectionStatus converts raw input into an InspectionStatus.
func ParseInspectionStatus(value string) (InspectionStatus, error) {
	for _, candidate := range validInspectionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inspection status %q", value)
}

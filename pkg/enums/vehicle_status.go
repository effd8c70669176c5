package enums

import "fmt"

// VehicleStatus tracks the lifecycle of a vehicle listing.
type VehicleStatus string

const (
	VehicleStatusPending VehicleStatus = "pending"
	VehicleStatusActive  VehicleStatus = "active"
	VehicleStatusSold    VehicleStatus = "sold"
	VehicleStatusRemoved VehicleStatus = "removed"
)

var validVehicleStatuses = []VehicleStatus{
	VehicleStatusPending,
	VehicleStatusActive,
	VehicleStatusSold,
	VehicleStatusRemoved,
}

// String implements fmt.Stringer.
func (v VehicleStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VehicleStatus.
func (v VehicleStatus) IsValid() bool {
	for _, candidate := range validVehicleStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleStatus converts raw input into a VehicleStatus.
func ParseVehicleStatus(value string) (VehicleStatus, error) {
	for _, candidate := range validVehicleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle status %q", value)
}

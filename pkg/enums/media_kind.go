package enums

import "fmt"

// MediaKind categorizes uploads so each key lands in a predictable prefix
// and is validated against the right mime types.
type MediaKind string

const (
	MediaKindVehiclePhoto MediaKind = "vehicle_photo"
	MediaKindVehicleVideo MediaKind = "vehicle_video"
	MediaKindInspection   MediaKind = "inspection"
	MediaKindDocument     MediaKind = "document"
)

var validMediaKinds = []MediaKind{
	MediaKindVehiclePhoto,
	MediaKindVehicleVideo,
	MediaKindInspection,
	MediaKindDocument,
}

// String implements fmt.Stringer.
func (m MediaKind) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MediaKind.
func (m MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	for _, candidate := range validMediaKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}

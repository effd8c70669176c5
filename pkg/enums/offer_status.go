package enums

import "fmt"

// OfferStatus tracks the lifecycle of a dealer offer.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusCountered OfferStatus = "countered"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusDeclined  OfferStatus = "declined"
	OfferStatusExpired   OfferStatus = "expired"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusPending,
	OfferStatusCountered,
	OfferStatusAccepted,
	OfferStatusDeclined,
	OfferStatusExpired,
}

// String implements fmt.Stringer.
func (o OfferStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OfferStatus.
func (o OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OfferStatus) IsTerminal() bool {
	switch o {
	case OfferStatusAccepted, OfferStatusDeclined, OfferStatusExpired:
		return true
	default:
		return false
	}
}

// ParseOfferStatus converts raw input into an OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	for _, candidate := range validOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}
